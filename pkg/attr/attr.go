// Package attr implements the attribute decoder of spec.md §4.1: a pure
// function from a source filename to a decoded target name and an
// attribute set, plus the mode-derivation table of spec.md §3.
//
// Marker vocabulary (chosen per spec.md §9's open question, frozen here):
// leading segment markers "dot_", "private_", "readonly_", "executable_",
// stripped repeatedly from the front in any order, chosen to match the
// spec's own worked example (dot_bashrc -> .bashrc, {DOT}). Suffixes
// ".age" and ".j2" are stripped right-to-left as spec.md §4.1 requires.
package attr

import (
	"io/fs"
	"strings"
)

// FileAttributes is a bitset over the six recognized attributes.
type FileAttributes uint8

const (
	DOT FileAttributes = 1 << iota
	PRIVATE
	READONLY
	EXECUTABLE
	TEMPLATE
	ENCRYPTED
)

func (a FileAttributes) Has(f FileAttributes) bool { return a&f != 0 }
func (a FileAttributes) String() string {
	names := []struct {
		f FileAttributes
		s string
	}{
		{DOT, "DOT"}, {PRIVATE, "PRIVATE"}, {READONLY, "READONLY"},
		{EXECUTABLE, "EXECUTABLE"}, {TEMPLATE, "TEMPLATE"}, {ENCRYPTED, "ENCRYPTED"},
	}
	var parts []string
	for _, n := range names {
		if a.Has(n.f) {
			parts = append(parts, n.s)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

var markerPrefixes = []struct {
	prefix string
	attr   FileAttributes
}{
	{"dot_", DOT},
	{"private_", PRIVATE},
	{"readonly_", READONLY},
	{"executable_", EXECUTABLE},
}

// Decode maps a single path segment (file or directory name, as it
// appears on disk in the source tree) to its decoded name and attribute
// set. It never fails: a name matching no recognized construct decodes
// to itself with an empty attribute set, per spec.md §4.1's edge case.
func Decode(name string) (decodedName string, attrs FileAttributes) {
	stem := name

	// Suffixes strip right-to-left: rightmost ".age" first, then a
	// remaining rightmost ".j2". "name.j2.age" decrypts to a template;
	// "name.age.j2" is not canonical but still decodes the same set.
	if strings.HasSuffix(stem, ".age") {
		attrs |= ENCRYPTED
		stem = strings.TrimSuffix(stem, ".age")
	}
	if strings.HasSuffix(stem, ".j2") {
		attrs |= TEMPLATE
		stem = strings.TrimSuffix(stem, ".j2")
		if !attrs.Has(ENCRYPTED) && strings.HasSuffix(stem, ".age") {
			attrs |= ENCRYPTED
			stem = strings.TrimSuffix(stem, ".age")
		}
	}

	// Prefix markers strip repeatedly, in any order, until none match.
	for {
		matched := false
		for _, m := range markerPrefixes {
			if strings.HasPrefix(stem, m.prefix) {
				attrs |= m.attr
				stem = strings.TrimPrefix(stem, m.prefix)
				matched = true
			}
		}
		if !matched {
			break
		}
	}

	if attrs.Has(DOT) {
		stem = "." + stem
	}
	return stem, attrs
}

// ModeFor derives the Unix mode for an entry from its attribute set,
// per the table in spec.md §3. Attribute combinations the table leaves
// unspecified (e.g. READONLY+EXECUTABLE) resolve by precedence:
// PRIVATE+EXECUTABLE first, then READONLY, then PRIVATE, then EXECUTABLE.
func ModeFor(attrs FileAttributes, isDir bool) fs.FileMode {
	switch {
	case attrs.Has(PRIVATE) && attrs.Has(EXECUTABLE):
		return 0o700
	case attrs.Has(READONLY):
		if isDir || attrs.Has(EXECUTABLE) {
			return 0o555
		}
		return 0o444
	case attrs.Has(PRIVATE):
		if isDir {
			return 0o700
		}
		return 0o600
	case attrs.Has(EXECUTABLE):
		return 0o755
	default:
		if isDir {
			return 0o755
		}
		return 0o644
	}
}
