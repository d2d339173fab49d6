package filesystem

import (
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/afero/mem"
)

// aferoFS implements FS on top of an afero.Fs, letting tests substitute an
// in-memory filesystem for the real one.
type aferoFS struct {
	fs afero.Fs
}

// NewAfero creates an FS backed by the given afero.Fs (typically
// afero.NewMemMapFs() in tests).
func NewAfero(afs afero.Fs) FS {
	return &aferoFS{fs: afs}
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) { return a.fs.Stat(name) }

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = fs.FileInfoToDirEntry(e)
	}
	return out, nil
}

// Symlink simulates a symlink on backends without native support (e.g.
// MemMapFs) by writing a regular file whose content is the link target,
// tagged with the symlink mode bit so Lstat-style callers can recognize it.
func (a *aferoFS) Symlink(oldname, newname string) error {
	if linker, ok := a.fs.(afero.Linker); ok {
		return linker.SymlinkIfPossible(oldname, newname)
	}
	if err := afero.WriteFile(a.fs, newname, []byte(oldname), 0o777); err != nil {
		return err
	}
	// MemMapFs drops non-permission bits on create and chmod, so the
	// symlink bit is set on the in-memory file's metadata directly.
	f, err := a.fs.Open(newname)
	if err != nil {
		return err
	}
	defer f.Close()
	if mf, ok := f.(*mem.File); ok {
		mem.SetMode(mf.Data(), 0o777|os.ModeSymlink)
	}
	return nil
}

func (a *aferoFS) Readlink(name string) (string, error) {
	if reader, ok := a.fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	content, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (a *aferoFS) Remove(name string) error            { return a.fs.Remove(name) }
func (a *aferoFS) RemoveAll(path string) error         { return a.fs.RemoveAll(path) }
func (a *aferoFS) Rename(oldpath, newpath string) error { return a.fs.Rename(oldpath, newpath) }

func (a *aferoFS) Chmod(name string, mode fs.FileMode) error {
	return a.fs.Chmod(name, mode)
}

func (a *aferoFS) CreateTemp(dir, pattern string) (TempFile, error) {
	return afero.TempFile(a.fs, dir, pattern)
}
