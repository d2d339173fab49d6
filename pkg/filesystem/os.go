package filesystem

import (
	"io/fs"
	"os"
)

// osFS implements FS using the real operating system filesystem.
type osFS struct{}

// NewOS creates the real OS filesystem implementation.
func NewOS() FS {
	return &osFS{}
}

func (o *osFS) Stat(name string) (fs.FileInfo, error)  { return os.Stat(name) }
func (o *osFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
func (o *osFS) ReadFile(name string) ([]byte, error)   { return os.ReadFile(name) }

func (o *osFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (o *osFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (o *osFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

func (o *osFS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }
func (o *osFS) Readlink(name string) (string, error)  { return os.Readlink(name) }
func (o *osFS) Remove(name string) error              { return os.Remove(name) }
func (o *osFS) RemoveAll(path string) error            { return os.RemoveAll(path) }
func (o *osFS) Rename(oldpath, newpath string) error   { return os.Rename(oldpath, newpath) }
func (o *osFS) Chmod(name string, mode fs.FileMode) error { return os.Chmod(name, mode) }

func (o *osFS) CreateTemp(dir, pattern string) (TempFile, error) {
	return os.CreateTemp(dir, pattern)
}
