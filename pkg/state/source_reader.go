package state

import (
	"context"
	"io/fs"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/PaulYuuu/guisu/pkg/attr"
	"github.com/PaulYuuu/guisu/pkg/errors"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/paths"
)

// IgnorePredicate reports whether a source-relative path should be
// excluded from the source tree entirely (spec.md §6).
type IgnorePredicate func(paths.SourceRelativePath) bool

// Reader implements the Source Reader of spec.md §4.3.
type Reader struct {
	fs     filesystem.FS
	root   paths.AbsolutePath
	ignore IgnorePredicate
	// maxConcurrency bounds the data-parallel work pool; 0 means the
	// package default.
	maxConcurrency int
}

const defaultMaxConcurrency = 16

// NewReader constructs a Source Reader rooted at root. ignore may be nil,
// meaning nothing is excluded.
func NewReader(fsys filesystem.FS, root paths.AbsolutePath, ignore IgnorePredicate) *Reader {
	if ignore == nil {
		ignore = func(paths.SourceRelativePath) bool { return false }
	}
	return &Reader{fs: fsys, root: root, ignore: ignore, maxConcurrency: defaultMaxConcurrency}
}

type rawEntry struct {
	parentDest paths.DestinationRelativePath
	parentSrc  paths.SourceRelativePath
	name       string
	info       fs.FileInfo
}

// Read enumerates the entire source tree and decodes every surviving
// entry into a SourceState. Per spec.md §4.3, an individual unreadable
// entry fails the whole pass (no partial result), and duplicate decoded
// destination paths fail with DuplicateTarget.
func (r *Reader) Read(ctx context.Context) (*SourceState, error) {
	var (
		mu      sync.Mutex
		entries = make(map[string]SourceEntry)
		aggErrs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)

	emptySrc, _ := paths.NewSourceRelative("")
	emptyDest, _ := paths.NewDestinationRelative("")

	var walk func(parentSrc paths.SourceRelativePath, parentDest paths.DestinationRelativePath) error
	walk = func(parentSrc paths.SourceRelativePath, parentDest paths.DestinationRelativePath) error {
		dirAbs := r.root.JoinSource(parentSrc)
		dirEntries, err := r.fs.ReadDir(dirAbs.String())
		if err != nil {
			return errors.Wrap(err, errors.ErrIORead, "read source directory").WithPath(dirAbs.String())
		}

		for _, de := range dirEntries {
			name := de.Name()
			childSrc := joinSourceSegment(parentSrc, name)
			if r.ignore(childSrc) {
				continue
			}
			info, err := de.Info()
			if err != nil {
				mu.Lock()
				aggErrs = append(aggErrs, errors.Wrap(err, errors.ErrIOMetadata, "stat source entry").WithPath(childSrc.String()))
				mu.Unlock()
				continue
			}

			re := rawEntry{parentDest: parentDest, parentSrc: parentSrc, name: name, info: info}
			work := func() error {
				return r.processEntry(gctx, re, &mu, entries, &aggErrs, walk)
			}
			// Run inline when the group is at its limit: a directory worker
			// blocking in g.Go on slots held by other directory workers
			// would deadlock the walk.
			if !g.TryGo(work) {
				if err := work(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(emptySrc, emptyDest); err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(aggErrs) > 0 {
		return nil, errors.NewAggregate(aggErrs)
	}

	return &SourceState{entries: entries}, nil
}

func (r *Reader) processEntry(
	ctx context.Context,
	re rawEntry,
	mu *sync.Mutex,
	entries map[string]SourceEntry,
	aggErrs *[]error,
	walk func(paths.SourceRelativePath, paths.DestinationRelativePath) error,
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	decodedName, entryAttrs := attr.Decode(re.name)
	childSrc := joinSourceSegment(re.parentSrc, re.name)
	childDest := joinDestSegment(re.parentDest, decodedName)

	mode := re.info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		target, err := r.fs.Readlink(r.root.JoinSource(childSrc).String())
		if err != nil {
			recordErr(mu, aggErrs, errors.Wrap(err, errors.ErrIOSymlink, "read symlink target").WithPath(childSrc.String()))
			return nil
		}
		recordEntry(mu, entries, aggErrs, SourceEntry{
			Kind: KindSymlink, SourcePath: childSrc, DestPath: childDest,
			Attrs: entryAttrs, LinkTarget: target,
		})
		return nil

	case re.info.IsDir():
		recordEntry(mu, entries, aggErrs, SourceEntry{
			Kind: KindDirectory, SourcePath: childSrc, DestPath: childDest, Attrs: entryAttrs,
		})
		if err := walk(childSrc, childDest); err != nil {
			recordErr(mu, aggErrs, err)
		}
		return nil

	case mode.IsRegular():
		recordEntry(mu, entries, aggErrs, SourceEntry{
			Kind: KindFile, SourcePath: childSrc, DestPath: childDest, Attrs: entryAttrs,
		})
		return nil

	default:
		recordErr(mu, aggErrs, errors.New(errors.ErrUnsupportedFile, "unsupported file type").WithPath(childSrc.String()))
		return nil
	}
}

func recordEntry(mu *sync.Mutex, entries map[string]SourceEntry, aggErrs *[]error, e SourceEntry) {
	mu.Lock()
	defer mu.Unlock()
	key := e.DestPath.String()
	if existing, ok := entries[key]; ok {
		*aggErrs = append(*aggErrs, errors.New(errors.ErrDuplicateTarget, "duplicate decoded destination path").
			WithDetail("path", key).
			WithDetail("first", existing.SourcePath.String()).
			WithDetail("second", e.SourcePath.String()))
		return
	}
	entries[key] = e
}

func recordErr(mu *sync.Mutex, aggErrs *[]error, err error) {
	mu.Lock()
	defer mu.Unlock()
	*aggErrs = append(*aggErrs, err)
}

func joinSourceSegment(parent paths.SourceRelativePath, name string) paths.SourceRelativePath {
	if parent.String() == "" {
		rel, _ := paths.NewSourceRelative(name)
		return rel
	}
	child, _ := paths.NewSourceRelative(name)
	return parent.Join(child)
}

func joinDestSegment(parent paths.DestinationRelativePath, name string) paths.DestinationRelativePath {
	if parent.String() == "" {
		rel, _ := paths.NewDestinationRelative(name)
		return rel
	}
	child, _ := paths.NewDestinationRelative(name)
	return parent.Join(child)
}
