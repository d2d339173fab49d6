package state

import (
	stderrors "errors"
	"io/fs"
	"sync"

	"github.com/PaulYuuu/guisu/pkg/errors"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/paths"
)

// DestinationReader implements spec.md §4.5: a lazy, memoized view of the
// destination tree. It never follows symlinks and caches results for the
// lifetime of one reconciliation pass.
type DestinationReader struct {
	fs   filesystem.FS
	root paths.AbsolutePath

	mu    sync.Mutex
	cache map[string]DestinationEntry
}

// NewDestinationReader constructs a reader rooted at root.
func NewDestinationReader(fsys filesystem.FS, root paths.AbsolutePath) *DestinationReader {
	return &DestinationReader{fs: fsys, root: root, cache: make(map[string]DestinationEntry)}
}

// ReadEntry returns the DestinationEntry for rel, reading through to disk
// only on the first call for a given path; subsequent calls, including
// concurrent ones, return the cached value.
func (d *DestinationReader) ReadEntry(rel paths.DestinationRelativePath) (DestinationEntry, error) {
	key := rel.String()

	d.mu.Lock()
	if cached, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	entry, err := d.readThrough(rel)
	if err != nil {
		return DestinationEntry{}, err
	}

	d.mu.Lock()
	if cached, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.cache[key] = entry
	d.mu.Unlock()
	return entry, nil
}

func (d *DestinationReader) readThrough(rel paths.DestinationRelativePath) (DestinationEntry, error) {
	abs := d.root.JoinDest(rel)
	info, err := d.fs.Lstat(abs.String())
	if err != nil {
		if isNotExist(err) {
			return DestinationEntry{Kind: KindMissing, DestPath: rel}, nil
		}
		return DestinationEntry{}, errors.Wrap(err, errors.ErrIOMetadata, "lstat destination entry").WithPath(abs.String())
	}

	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		target, err := d.fs.Readlink(abs.String())
		if err != nil {
			return DestinationEntry{}, errors.Wrap(err, errors.ErrIOSymlink, "read destination symlink").WithPath(abs.String())
		}
		return DestinationEntry{Kind: KindSymlink, DestPath: rel, LinkText: target}, nil

	case info.IsDir():
		m := info.Mode().Perm()
		return DestinationEntry{Kind: KindDirectory, DestPath: rel, Mode: &m}, nil

	case mode.IsRegular():
		content, err := d.fs.ReadFile(abs.String())
		if err != nil {
			return DestinationEntry{}, errors.Wrap(err, errors.ErrIORead, "read destination file").WithPath(abs.String())
		}
		m := info.Mode().Perm()
		return DestinationEntry{Kind: KindFile, DestPath: rel, Content: content, Mode: &m}, nil

	default:
		return DestinationEntry{}, errors.New(errors.ErrUnsupportedFile, "unsupported destination file type").WithPath(abs.String())
	}
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}
