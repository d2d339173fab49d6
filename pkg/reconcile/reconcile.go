// Package reconcile implements the Reconciler of spec.md §4.6: a
// three-way comparison of target, destination, and ledger that classifies
// every managed path into an exhaustive Status, then the Decision the
// caller attaches to drive the Applier.
package reconcile

import (
	"crypto/sha256"
	"io/fs"

	"github.com/PaulYuuu/guisu/pkg/ledger"
	"github.com/PaulYuuu/guisu/pkg/state"
)

// Status is the outcome of classifying one destination-relative path.
type Status int

const (
	// Synced: target, destination, and ledger all agree.
	Synced Status = iota
	// Added: no destination entry exists yet; create it.
	Added
	// AddedConflict: an unmanaged destination entry already exists with
	// different content and no ledger record adopts it.
	AddedConflict
	// ModifiedSource: source changed since the last apply; destination
	// still matches the ledger baseline. Safe to apply.
	ModifiedSource
	// ModifiedDest: the user edited the destination out-of-band; source
	// is unchanged from the ledger baseline.
	ModifiedDest
	// Conflict: both source and destination diverged from the ledger
	// baseline, and not to the same value.
	Conflict
	// Removed: source no longer produces this path, but the ledger (and
	// usually the destination) still does; schedule deletion.
	Removed
	// Ignored: the path is absent from target and from the ledger. Not
	// surfaced by Classify in practice, since the caller only iterates
	// the target/ledger key union; included for the table's exhaustiveness.
	Ignored
)

func (s Status) String() string {
	switch s {
	case Synced:
		return "Synced"
	case Added:
		return "Added"
	case AddedConflict:
		return "AddedConflict"
	case ModifiedSource:
		return "ModifiedSource"
	case ModifiedDest:
		return "ModifiedDest"
	case Conflict:
		return "Conflict"
	case Removed:
		return "Removed"
	default:
		return "Ignored"
	}
}

// Decision is the caller's explicit instruction to the Applier for one path.
type Decision int

const (
	Skip Decision = iota
	Apply
	Delete
)

func (d Decision) String() string {
	switch d {
	case Apply:
		return "Apply"
	case Delete:
		return "Delete"
	default:
		return "Skip"
	}
}

// fingerprint is SHA-256 of file content, as spec.md §4.6 defines h(x).
func fingerprint(content []byte) [32]byte {
	return sha256.Sum256(content)
}

// Classify implements spec.md §4.6's truth table. target and ledgerRecord
// are passed as pointers, nil meaning absent, since both are legitimately
// absent; dest always carries a Kind (KindMissing stands for absence).
func Classify(target *state.TargetEntry, dest state.DestinationEntry, ledgerRecord *ledger.Record) Status {
	if target == nil {
		if ledgerRecord != nil {
			return Removed
		}
		return Ignored
	}

	if dest.Kind == state.KindMissing {
		return Added
	}

	if !kindsMatch(target.Kind, dest.Kind) {
		return Conflict
	}

	switch target.Kind {
	case state.KindDirectory:
		return classifyDirectory(target, dest, ledgerRecord)
	case state.KindSymlink:
		return classifySymlink(target, dest)
	case state.KindFile:
		return classifyFile(target, dest, ledgerRecord)
	default:
		return Conflict
	}
}

func kindsMatch(t, d state.EntryKind) bool {
	return t == d
}

func classifyDirectory(target *state.TargetEntry, dest state.DestinationEntry, ledgerRecord *ledger.Record) Status {
	if modeDiffers(target.Mode, dest.Mode) {
		return ModifiedSource
	}
	return Synced
}

func classifySymlink(target *state.TargetEntry, dest state.DestinationEntry) Status {
	if target.LinkText == dest.LinkText {
		return Synced
	}
	return ModifiedSource
}

func classifyFile(target *state.TargetEntry, dest state.DestinationEntry, ledgerRecord *ledger.Record) Status {
	targetHash := fingerprint(target.Content)
	destHash := fingerprint(dest.Content)

	if ledgerRecord == nil {
		// "Added-conflict if c≠c' else Synced": adopt-or-overwrite.
		if targetHash == destHash {
			return Synced
		}
		return AddedConflict
	}

	sourceMatchesLedger := targetHash == ledgerRecord.Fingerprint
	destMatchesLedger := destHash == ledgerRecord.Fingerprint

	switch {
	case sourceMatchesLedger && destMatchesLedger:
		// Content is fully synced; a residual mode-only mismatch still
		// needs attributing to source or destination.
		return classifyModeOnly(target.Mode, dest.Mode, ledgerRecord.Mode)
	case destMatchesLedger && !sourceMatchesLedger:
		return ModifiedSource
	case sourceMatchesLedger && !destMatchesLedger:
		return ModifiedDest
	default:
		// Both diverged from the ledger baseline. If they happen to
		// agree with each other there is nothing to apply.
		if targetHash == destHash {
			return Synced
		}
		return Conflict
	}
}

// classifyModeOnly resolves the case where file content is fully synced
// but mode may have drifted, per spec.md §4.6's "Modes" paragraph.
func classifyModeOnly(targetMode, destMode *fs.FileMode, ledgerMode *uint32) Status {
	sourceModeMatches := modeEqualsLedger(targetMode, ledgerMode)
	destModeMatches := modeEqualsLedger(destMode, ledgerMode)

	switch {
	case sourceModeMatches && destModeMatches:
		return Synced
	case destModeMatches && !sourceModeMatches:
		return ModifiedSource
	case sourceModeMatches && !destModeMatches:
		return ModifiedDest
	default:
		if modeDiffers(targetMode, destMode) {
			return Conflict
		}
		return Synced
	}
}

func modeEqualsLedger(m *fs.FileMode, ledgerMode *uint32) bool {
	if m == nil && ledgerMode == nil {
		return true
	}
	if m == nil || ledgerMode == nil {
		return false
	}
	return uint32(*m) == *ledgerMode
}

func modeDiffers(a, b *fs.FileMode) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return *a != *b
}
