package filesystem

import "io/fs"

// FS is the filesystem capability the core engine requires: enough to
// read, write, list, symlink and remove, with Lstat kept distinct from
// Stat so callers can detect symlinks without following them (the
// Destination Reader, spec.md §4.5, must not follow symlinks).
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
	Chmod(name string, mode fs.FileMode) error
	// CreateTemp creates a temp file in dir and returns a handle to it; used by
	// the Applier for write-then-rename atomic replacement.
	CreateTemp(dir, pattern string) (TempFile, error)
}

// TempFile is the narrow handle the Applier needs from a temp file: write,
// sync, close, and its own name for the subsequent rename.
type TempFile interface {
	Name() string
	Write(p []byte) (int, error)
	Sync() error
	Close() error
}
