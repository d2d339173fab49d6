// Package engine wires the six components of the core into the control
// flow spec.md §2 defines: Source Reader -> Content Processor (parallel)
// -> Target State -> Reconciler (per path) -> Applier -> Ledger update.
package engine

import (
	"context"

	"github.com/PaulYuuu/guisu/pkg/apply"
	"github.com/PaulYuuu/guisu/pkg/content"
	"github.com/PaulYuuu/guisu/pkg/ledger"
	"github.com/PaulYuuu/guisu/pkg/logging"
	"github.com/PaulYuuu/guisu/pkg/paths"
	"github.com/PaulYuuu/guisu/pkg/reconcile"
	"github.com/PaulYuuu/guisu/pkg/state"

	"github.com/PaulYuuu/guisu/pkg/filesystem"
)

// Options are the fully-resolved inputs the core accepts, per spec.md §6.
// The caller (a CLI command, typically) is responsible for resolving
// configuration, loading identities, and deciding the ignore predicate;
// the engine treats all of it as opaque input.
type Options struct {
	SourceRoot      paths.AbsolutePath
	DestinationRoot paths.AbsolutePath
	LedgerPath      string
	Ignore          state.IgnorePredicate
	Context         map[string]interface{}
	Decryptor       content.Decryptor
	Renderer        content.TemplateRenderer
	FS              filesystem.FS
}

// Engine is a single configured instance of the core, reusable across
// multiple Plan/Apply cycles against the same roots.
type Engine struct {
	opts      Options
	processor *content.Processor
	ledger    *ledger.Ledger
}

// New constructs an Engine, opening the ledger database.
func New(opts Options) (*Engine, error) {
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	l, err := ledger.Open(opts.LedgerPath)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:      opts,
		processor: content.New(opts.Decryptor, opts.Renderer),
		ledger:    l,
	}, nil
}

// Close releases the ledger handle.
func (e *Engine) Close() error {
	return e.ledger.Close()
}

// Plan is the per-path outcome of a reconciliation pass, before any
// decision has been attached.
type Plan struct {
	Path   string
	Status reconcile.Status
}

// Reconcile runs the Source Reader, Target State builder, and Reconciler,
// returning one Plan per managed path (the union of target and ledger
// keys, per spec.md §4.6).
func (e *Engine) Reconcile(ctx context.Context) (*state.TargetState, []Plan, error) {
	logger := logging.GetLogger("engine")

	reader := state.NewReader(e.opts.FS, e.opts.SourceRoot, e.opts.Ignore)
	source, err := reader.Read(ctx)
	if err != nil {
		return nil, nil, err
	}

	target, err := state.BuildTargetState(ctx, source, e.processor, e.opts.Context, e.opts.FS, e.opts.SourceRoot)
	if err != nil {
		return nil, nil, err
	}

	destReader := state.NewDestinationReader(e.opts.FS, e.opts.DestinationRoot)

	seen := make(map[string]struct{})
	var plans []Plan

	for _, p := range target.Paths() {
		key := p.String()
		seen[key] = struct{}{}
		plan, err := e.classifyOne(destReader, target, key, p)
		if err != nil {
			return nil, nil, err
		}
		logging.LogPathStatus(logger, plan.Path, plan.Status)
		plans = append(plans, plan)
	}

	ledgerKeys, err := e.ledger.Keys()
	if err != nil {
		return nil, nil, err
	}
	for _, key := range ledgerKeys {
		if _, ok := seen[key]; ok {
			continue
		}
		rel, err := paths.NewDestinationRelative(key)
		if err != nil {
			continue
		}
		plan, err := e.classifyOne(destReader, target, key, rel)
		if err != nil {
			return nil, nil, err
		}
		if plan.Status != reconcile.Ignored {
			logging.LogPathStatus(logger, plan.Path, plan.Status)
			plans = append(plans, plan)
		}
	}

	logging.LogReconcileSummary(logger, summarize(plans))
	return target, plans, nil
}

func summarize(plans []Plan) map[reconcile.Status]int {
	counts := make(map[reconcile.Status]int, len(plans))
	for _, p := range plans {
		counts[p.Status]++
	}
	return counts
}

func (e *Engine) classifyOne(destReader *state.DestinationReader, target *state.TargetState, key string, rel paths.DestinationRelativePath) (Plan, error) {
	var targetPtr *state.TargetEntry
	if te, ok := target.Get(rel); ok {
		targetPtr = &te
	}

	destEntry, err := destReader.ReadEntry(rel)
	if err != nil {
		return Plan{}, err
	}

	var ledgerRecord *ledger.Record
	if rec, ok, err := e.ledger.Get(key); err != nil {
		return Plan{}, err
	} else if ok {
		ledgerRecord = &rec
	}

	status := reconcile.Classify(targetPtr, destEntry, ledgerRecord)
	return Plan{Path: key, Status: status}, nil
}

// DefaultDecisions maps each Plan to the conservative default Decision:
// apply anything safe (Added, ModifiedSource, Removed), skip anything
// that needs a human call (ModifiedDest, Conflict, AddedConflict), and
// leave an already-Synced path untouched.
func DefaultDecisions(plans []Plan) map[string]reconcile.Decision {
	decisions := make(map[string]reconcile.Decision, len(plans))
	for _, p := range plans {
		switch p.Status {
		case reconcile.Added, reconcile.ModifiedSource:
			decisions[p.Path] = reconcile.Apply
		case reconcile.Removed:
			decisions[p.Path] = reconcile.Delete
		default:
			decisions[p.Path] = reconcile.Skip
		}
	}
	return decisions
}

// ReadDestinationContent returns the current on-disk bytes for a managed
// path, for callers (such as `guisu diff`) that need to compare them
// against the target's rendered content. Directories and symlinks have no
// byte content and return nil.
func (e *Engine) ReadDestinationContent(ctx context.Context, rel paths.DestinationRelativePath) ([]byte, error) {
	destReader := state.NewDestinationReader(e.opts.FS, e.opts.DestinationRoot)
	entry, err := destReader.ReadEntry(rel)
	if err != nil {
		return nil, err
	}
	return entry.Content, nil
}

// Apply runs the Applier over target with the given decisions.
func (e *Engine) Apply(ctx context.Context, target *state.TargetState, decisions map[string]reconcile.Decision) (apply.Report, error) {
	applier := apply.New(e.opts.FS, e.opts.DestinationRoot, e.ledger)
	return applier.Apply(ctx, target, decisions)
}
