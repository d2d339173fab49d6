// Package apply implements the Applier of spec.md §4.7: filesystem
// mutations driven by an explicit per-path Decision, with the ledger
// updated as part of the same logical step and a structured Report
// returned to the caller.
package apply

import (
	"context"
	"crypto/sha256"
	"io/fs"
	"sort"

	"github.com/PaulYuuu/guisu/pkg/errors"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/ledger"
	"github.com/PaulYuuu/guisu/pkg/logging"
	"github.com/PaulYuuu/guisu/pkg/paths"
	"github.com/PaulYuuu/guisu/pkg/reconcile"
	"github.com/PaulYuuu/guisu/pkg/state"
)

// PathError is one per-path failure recorded in a Report.
type PathError struct {
	Path string
	Err  error
}

// Report is the structured outcome of one Apply pass (spec.md §4.7).
type Report struct {
	Added    []string
	Modified []string
	Removed  []string
	Skipped  []string
	Errors   []PathError
}

// Applier performs filesystem mutations against destRoot and keeps l in
// sync with what was actually written.
type Applier struct {
	fs       filesystem.FS
	destRoot paths.AbsolutePath
	ledger   *ledger.Ledger
}

// New constructs an Applier.
func New(fsys filesystem.FS, destRoot paths.AbsolutePath, l *ledger.Ledger) *Applier {
	return &Applier{fs: fsys, destRoot: destRoot, ledger: l}
}

// Apply runs every decision in lexicographic order of destination-relative
// path, per spec.md §5's ordering guarantee (parent directories apply
// before their children). It checks ctx between paths and stops taking
// new mutations once cancelled, leaving the ledger untouched for any path
// not yet applied.
func (a *Applier) Apply(ctx context.Context, target *state.TargetState, decisions map[string]reconcile.Decision) (Report, error) {
	logger := logging.GetLogger("apply")
	var report Report

	keys := make([]string, 0, len(decisions))
	for k := range decisions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		decision := decisions[key]
		logging.LogDecision(logger, key, decision)
		rel, err := paths.NewDestinationRelative(key)
		if err != nil {
			report.Errors = append(report.Errors, PathError{Path: key, Err: err})
			continue
		}

		switch decision {
		case reconcile.Skip:
			report.Skipped = append(report.Skipped, key)

		case reconcile.Delete:
			if err := a.applyDelete(rel); err != nil {
				report.Errors = append(report.Errors, PathError{Path: key, Err: err})
				continue
			}
			report.Removed = append(report.Removed, key)

		case reconcile.Apply:
			entry, ok := target.Get(rel)
			if !ok {
				report.Errors = append(report.Errors, PathError{Path: key, Err: errors.New(errors.ErrReconcileKindMismatch, "apply decision with no target entry").WithPath(key)})
				continue
			}
			wasNew, err := a.applyEntry(rel, entry)
			if err != nil {
				report.Errors = append(report.Errors, PathError{Path: key, Err: err})
				continue
			}
			if wasNew {
				report.Added = append(report.Added, key)
			} else {
				report.Modified = append(report.Modified, key)
			}
		}
	}

	return report, nil
}

func (a *Applier) applyEntry(rel paths.DestinationRelativePath, entry state.TargetEntry) (wasNew bool, err error) {
	switch entry.Kind {
	case state.KindDirectory:
		return a.applyDirectory(rel, entry)
	case state.KindFile:
		return a.applyFile(rel, entry)
	case state.KindSymlink:
		return a.applySymlink(rel, entry)
	default:
		return false, errors.Newf(errors.ErrReconcileKindMismatch, "unsupported target kind for %s", rel.String())
	}
}

func (a *Applier) applyDirectory(rel paths.DestinationRelativePath, entry state.TargetEntry) (bool, error) {
	abs := a.destRoot.JoinDest(rel)
	_, statErr := a.fs.Stat(abs.String())
	existed := statErr == nil

	mode := fs.FileMode(0o755)
	if entry.Mode != nil {
		mode = *entry.Mode
	}
	if err := a.fs.MkdirAll(abs.String(), mode); err != nil {
		return false, errors.Wrap(err, errors.ErrIOWrite, "create directory").WithPath(abs.String())
	}
	if entry.Mode != nil {
		if err := a.fs.Chmod(abs.String(), *entry.Mode); err != nil {
			return false, errors.Wrap(err, errors.ErrIOWrite, "chmod directory").WithPath(abs.String())
		}
	}
	// No ledger content fingerprint for directories (spec.md §4.7:
	// "implementation choice, but consistent" — this codebase tracks no
	// directory record at all; reconcile.Classify never reads one either.
	return !existed, nil
}

func (a *Applier) applyFile(rel paths.DestinationRelativePath, entry state.TargetEntry) (bool, error) {
	abs := a.destRoot.JoinDest(rel)
	dir := abs.Dir()

	_, statErr := a.fs.Stat(abs.String())
	existed := statErr == nil

	if err := a.fs.MkdirAll(dir.String(), 0o755); err != nil {
		return false, errors.Wrap(err, errors.ErrIOWrite, "create parent directory").WithPath(dir.String())
	}

	tmp, err := a.fs.CreateTemp(dir.String(), ".guisu-tmp-*")
	if err != nil {
		return false, errors.Wrap(err, errors.ErrIOWrite, "create temp file").WithPath(dir.String())
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(entry.Content); err != nil {
		_ = tmp.Close()
		_ = a.fs.Remove(tmpName)
		return false, errors.Wrap(err, errors.ErrIOWrite, "write temp file").WithPath(tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = a.fs.Remove(tmpName)
		return false, errors.Wrap(err, errors.ErrIOWrite, "fsync temp file").WithPath(tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = a.fs.Remove(tmpName)
		return false, errors.Wrap(err, errors.ErrIOWrite, "close temp file").WithPath(tmpName)
	}

	if err := a.fs.Rename(tmpName, abs.String()); err != nil {
		_ = a.fs.Remove(tmpName)
		return false, errors.Wrap(err, errors.ErrIORename, "rename temp file over destination").WithPath(abs.String())
	}

	if entry.Mode != nil {
		if err := a.fs.Chmod(abs.String(), *entry.Mode); err != nil {
			return false, errors.Wrap(err, errors.ErrIOWrite, "chmod destination file").WithPath(abs.String())
		}
	}

	fp := sha256.Sum256(entry.Content)
	rec := ledger.Record{Fingerprint: fp}
	if entry.Mode != nil {
		m := uint32(*entry.Mode)
		rec.Mode = &m
	}
	if err := a.ledger.Set(rel.String(), rec); err != nil {
		return false, err
	}

	return !existed, nil
}

func (a *Applier) applySymlink(rel paths.DestinationRelativePath, entry state.TargetEntry) (bool, error) {
	abs := a.destRoot.JoinDest(rel)

	info, statErr := a.fs.Lstat(abs.String())
	existed := statErr == nil

	if existed {
		if info.Mode()&fs.ModeSymlink != 0 {
			current, err := a.fs.Readlink(abs.String())
			if err != nil {
				return false, errors.Wrap(err, errors.ErrIOSymlink, "read existing symlink").WithPath(abs.String())
			}
			if current == entry.LinkText {
				return false, nil
			}
			if err := a.fs.Remove(abs.String()); err != nil {
				return false, errors.Wrap(err, errors.ErrIOWrite, "remove stale symlink").WithPath(abs.String())
			}
		} else {
			return false, errors.New(errors.ErrReconcileKindMismatch, "refusing to replace a non-symlink with a symlink").WithPath(abs.String())
		}
	}

	dir := abs.Dir()
	if err := a.fs.MkdirAll(dir.String(), 0o755); err != nil {
		return false, errors.Wrap(err, errors.ErrIOWrite, "create parent directory").WithPath(dir.String())
	}
	if err := a.fs.Symlink(entry.LinkText, abs.String()); err != nil {
		return false, errors.Wrap(err, errors.ErrIOSymlink, "create symlink").WithPath(abs.String())
	}
	return !existed, nil
}

func (a *Applier) applyDelete(rel paths.DestinationRelativePath) error {
	abs := a.destRoot.JoinDest(rel)
	info, err := a.fs.Lstat(abs.String())
	if err == nil {
		if info.IsDir() {
			err = a.fs.RemoveAll(abs.String())
		} else {
			err = a.fs.Remove(abs.String())
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrIOWrite, "remove destination entry").WithPath(abs.String())
		}
	}
	if err := a.ledger.Delete(rel.String()); err != nil {
		return err
	}
	return nil
}
