// Package state implements the three scanners of spec.md §4.3-§4.5: the
// Source Reader, the Target State builder, and the lazy, memoized
// Destination Reader.
package state

import (
	"io/fs"

	"github.com/PaulYuuu/guisu/pkg/attr"
	"github.com/PaulYuuu/guisu/pkg/paths"
)

// EntryKind discriminates the variants of every entry type in this
// package, mirroring the tagged-sum-type model spec.md §9 prescribes.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindSymlink
	KindRemove
	KindMissing
)

// SourceEntry is one decoded entry from the source tree (spec.md §3).
type SourceEntry struct {
	Kind       EntryKind
	SourcePath paths.SourceRelativePath
	DestPath   paths.DestinationRelativePath
	Attrs      attr.FileAttributes
	// LinkTarget holds the literal, untransformed link text for Symlink entries.
	LinkTarget string
}

// SourceState is the source-relative-path-independent result of reading
// the source tree: a mapping keyed by destination-relative path, since
// that is the join key used throughout reconciliation.
type SourceState struct {
	entries map[string]SourceEntry
}

// NewSourceState wraps a completed entry map. Callers build one via
// Reader.Read; this constructor exists for tests that want to construct
// fixtures directly.
func NewSourceState(entries map[string]SourceEntry) *SourceState {
	return &SourceState{entries: entries}
}

func (s *SourceState) Get(p paths.DestinationRelativePath) (SourceEntry, bool) {
	e, ok := s.entries[p.String()]
	return e, ok
}

func (s *SourceState) Len() int { return len(s.entries) }

// Paths returns the destination-relative keys, unordered.
func (s *SourceState) Paths() []paths.DestinationRelativePath {
	out := make([]paths.DestinationRelativePath, 0, len(s.entries))
	for k := range s.entries {
		rel, _ := paths.NewDestinationRelative(k)
		out = append(out, rel)
	}
	return out
}

func (s *SourceState) Each(fn func(SourceEntry)) {
	for _, e := range s.entries {
		fn(e)
	}
}

// TargetEntry is one fully-transformed entry, ready to compare against
// the destination and apply (spec.md §3).
type TargetEntry struct {
	Kind     EntryKind
	DestPath paths.DestinationRelativePath
	Content  []byte
	Mode     *fs.FileMode
	LinkText string
}

// TargetState is the result of running every SourceEntry through the
// Content Processor, keyed the same way as SourceState.
type TargetState struct {
	entries map[string]TargetEntry
}

func NewTargetState(entries map[string]TargetEntry) *TargetState {
	return &TargetState{entries: entries}
}

func (t *TargetState) Get(p paths.DestinationRelativePath) (TargetEntry, bool) {
	e, ok := t.entries[p.String()]
	return e, ok
}

func (t *TargetState) Len() int { return len(t.entries) }

func (t *TargetState) Paths() []paths.DestinationRelativePath {
	out := make([]paths.DestinationRelativePath, 0, len(t.entries))
	for k := range t.entries {
		rel, _ := paths.NewDestinationRelative(k)
		out = append(out, rel)
	}
	return out
}

// DestinationEntry is produced on demand by the Destination Reader.
type DestinationEntry struct {
	Kind     EntryKind
	DestPath paths.DestinationRelativePath
	Content  []byte
	Mode     *fs.FileMode
	LinkText string
}

// IsManaged reports whether the entry represents something actually on
// disk, as opposed to KindMissing.
func (d DestinationEntry) IsManaged() bool { return d.Kind != KindMissing }
