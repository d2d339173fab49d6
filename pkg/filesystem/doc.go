// Package filesystem provides the FS abstraction the core engine uses for
// every on-disk interaction, plus two implementations: the real OS
// filesystem and an afero-backed one for hermetic tests.
package filesystem
