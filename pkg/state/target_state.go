package state

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/PaulYuuu/guisu/pkg/attr"
	"github.com/PaulYuuu/guisu/pkg/errors"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/paths"
)

// ContentProcessor is the capability the Target State builder needs from
// pkg/content; expressed as a local interface so this package does not
// import pkg/content directly (spec.md §4.2 calls it a narrow capability,
// not a base class).
type ContentProcessor interface {
	Process(sourceBytes []byte, attrs attr.FileAttributes, context map[string]interface{}) ([]byte, error)
}

// BuildTargetState implements spec.md §4.4: for each source entry, in
// parallel, produce a TargetEntry. Errors from any entry are collected;
// the pass fails only as a whole, carrying every individual failure, so
// the caller gets a full report rather than the first error.
func BuildTargetState(ctx context.Context, source *SourceState, processor ContentProcessor, renderContext map[string]interface{}, fsys filesystem.FS, sourceRoot paths.AbsolutePath) (*TargetState, error) {
	var (
		mu      sync.Mutex
		entries = make(map[string]TargetEntry, source.Len())
		aggErrs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultMaxConcurrency)

	source.Each(func(e SourceEntry) {
		entry := e
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			target, err := buildOne(entry, processor, renderContext, fsys, sourceRoot)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				aggErrs = append(aggErrs, err)
				return nil
			}
			entries[entry.DestPath.String()] = target
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(aggErrs) > 0 {
		return nil, errors.NewAggregate(aggErrs)
	}
	return &TargetState{entries: entries}, nil
}

func buildOne(e SourceEntry, processor ContentProcessor, renderContext map[string]interface{}, fsys filesystem.FS, sourceRoot paths.AbsolutePath) (TargetEntry, error) {
	switch e.Kind {
	case KindDirectory:
		mode := attr.ModeFor(e.Attrs, true)
		return TargetEntry{Kind: KindDirectory, DestPath: e.DestPath, Mode: &mode}, nil

	case KindSymlink:
		return TargetEntry{Kind: KindSymlink, DestPath: e.DestPath, LinkText: e.LinkTarget}, nil

	case KindFile:
		abs := sourceRoot.JoinSource(e.SourcePath)
		raw, err := fsys.ReadFile(abs.String())
		if err != nil {
			return TargetEntry{}, errors.Wrap(err, errors.ErrIORead, "read source file").WithPath(abs.String())
		}
		content, err := processor.Process(raw, e.Attrs, renderContext)
		if err != nil {
			return TargetEntry{}, errors.Wrapf(err, errors.ErrInternal, "process content for %s", e.DestPath.String())
		}
		mode := attr.ModeFor(e.Attrs, false)
		return TargetEntry{Kind: KindFile, DestPath: e.DestPath, Content: content, Mode: &mode}, nil

	default:
		return TargetEntry{}, errors.Newf(errors.ErrInternal, "unrecognized source entry kind for %s", e.DestPath.String())
	}
}
