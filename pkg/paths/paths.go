// Package paths implements the path algebra of spec.md §3: three disjoint,
// non-interchangeable path value types with total join/strip operations.
// An AbsolutePath is always rooted; a DestinationRelativePath or
// SourceRelativePath is always relative and never escapes its root via
// upward traversal. Mixing a destination-relative value where a
// source-relative one is expected is a compile error, not a runtime check.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/PaulYuuu/guisu/pkg/errors"
)

// AbsolutePath is a filesystem path guaranteed to be rooted.
type AbsolutePath struct {
	p string
}

// NewAbsolute constructs an AbsolutePath, failing if p is not absolute.
func NewAbsolute(p string) (AbsolutePath, error) {
	if !filepath.IsAbs(p) {
		return AbsolutePath{}, errors.New(errors.ErrPathNotAbsolute, "path is not absolute").WithPath(p)
	}
	return AbsolutePath{p: filepath.Clean(p)}, nil
}

// MustAbsolute is NewAbsolute but panics on error; for compile-time-known
// absolute paths (e.g. constants in tests).
func MustAbsolute(p string) AbsolutePath {
	a, err := NewAbsolute(p)
	if err != nil {
		panic(err)
	}
	return a
}

func (a AbsolutePath) String() string { return a.p }
func (a AbsolutePath) IsZero() bool   { return a.p == "" }

// JoinDest joins this absolute path with a destination-relative path.
func (a AbsolutePath) JoinDest(r DestinationRelativePath) AbsolutePath {
	return AbsolutePath{p: filepath.Join(a.p, r.p)}
}

// JoinSource joins this absolute path with a source-relative path.
func (a AbsolutePath) JoinSource(r SourceRelativePath) AbsolutePath {
	return AbsolutePath{p: filepath.Join(a.p, r.p)}
}

// Dir returns the parent directory as an AbsolutePath.
func (a AbsolutePath) Dir() AbsolutePath {
	return AbsolutePath{p: filepath.Dir(a.p)}
}

// StripDestPrefix removes base from the front of a, yielding a
// DestinationRelativePath. Fails with InvalidPathPrefix if a is not under base.
func (a AbsolutePath) StripDestPrefix(base AbsolutePath) (DestinationRelativePath, error) {
	rel, err := stripPrefix(a.p, base.p)
	if err != nil {
		return DestinationRelativePath{}, err
	}
	return NewDestinationRelative(rel)
}

// StripSourcePrefix removes base from the front of a, yielding a
// SourceRelativePath. Fails with InvalidPathPrefix if a is not under base.
func (a AbsolutePath) StripSourcePrefix(base AbsolutePath) (SourceRelativePath, error) {
	rel, err := stripPrefix(a.p, base.p)
	if err != nil {
		return SourceRelativePath{}, err
	}
	return NewSourceRelative(rel)
}

func stripPrefix(p, base string) (string, error) {
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrInvalidPathPrefix, "path is not under base").
			WithDetail("path", p).WithDetail("base", base)
	}
	return rel, nil
}

// DestinationRelativePath is a normalized path relative to the destination
// root; it never starts with a root marker and never escapes via "..".
type DestinationRelativePath struct {
	p string
}

// NewDestinationRelative constructs a DestinationRelativePath, normalizing
// and rejecting absolute input or upward traversal.
func NewDestinationRelative(p string) (DestinationRelativePath, error) {
	clean, err := normalizeRelative(p)
	if err != nil {
		return DestinationRelativePath{}, err
	}
	return DestinationRelativePath{p: clean}, nil
}

func (r DestinationRelativePath) String() string { return r.p }

// Join joins two destination-relative path segments.
func (r DestinationRelativePath) Join(other DestinationRelativePath) DestinationRelativePath {
	return DestinationRelativePath{p: filepath.Join(r.p, other.p)}
}

// Dir returns the parent component, or "" for a single-segment path.
func (r DestinationRelativePath) Dir() DestinationRelativePath {
	d := filepath.Dir(r.p)
	if d == "." {
		d = ""
	}
	return DestinationRelativePath{p: d}
}

func (r DestinationRelativePath) Less(other DestinationRelativePath) bool { return r.p < other.p }

// SourceRelativePath is a normalized path relative to the source root.
type SourceRelativePath struct {
	p string
}

// NewSourceRelative constructs a SourceRelativePath, normalizing and
// rejecting absolute input or upward traversal.
func NewSourceRelative(p string) (SourceRelativePath, error) {
	clean, err := normalizeRelative(p)
	if err != nil {
		return SourceRelativePath{}, err
	}
	return SourceRelativePath{p: clean}, nil
}

func (r SourceRelativePath) String() string { return r.p }

func (r SourceRelativePath) Join(other SourceRelativePath) SourceRelativePath {
	return SourceRelativePath{p: filepath.Join(r.p, other.p)}
}

func (r SourceRelativePath) Dir() SourceRelativePath {
	d := filepath.Dir(r.p)
	if d == "." {
		d = ""
	}
	return SourceRelativePath{p: d}
}

func normalizeRelative(p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", errors.New(errors.ErrPathNotRelative, "path is absolute").WithPath(p)
	}
	clean := filepath.Clean(p)
	if clean == "." {
		return "", nil
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrPathNotRelative, "path escapes its root via upward traversal").WithPath(p)
	}
	return clean, nil
}
