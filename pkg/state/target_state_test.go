package state

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulYuuu/guisu/pkg/attr"
	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/paths"
)

type upperProcessor struct{}

func (upperProcessor) Process(sourceBytes []byte, attrs attr.FileAttributes, context map[string]interface{}) ([]byte, error) {
	if attrs.Has(attr.TEMPLATE) {
		return []byte("RENDERED:" + string(sourceBytes)), nil
	}
	return sourceBytes, nil
}

func TestBuildTargetStateFile(t *testing.T) {
	afs := afero.NewMemMapFs()
	root := paths.MustAbsolute("/src")
	require.NoError(t, afero.WriteFile(afs, "/src/dot_bashrc", []byte("hello\n"), 0o644))

	dest, _ := paths.NewDestinationRelative(".bashrc")
	src, _ := paths.NewSourceRelative("dot_bashrc")
	source := NewSourceState(map[string]SourceEntry{
		dest.String(): {Kind: KindFile, SourcePath: src, DestPath: dest, Attrs: attr.DOT},
	})

	ts, err := BuildTargetState(context.Background(), source, upperProcessor{}, nil, filesystem.NewAfero(afs), root)
	require.NoError(t, err)

	entry, ok := ts.Get(dest)
	require.True(t, ok)
	assert.Equal(t, "hello\n", string(entry.Content))
	require.NotNil(t, entry.Mode)
	assert.Equal(t, 0o644, int(*entry.Mode))
}

func TestBuildTargetStateAggregatesErrors(t *testing.T) {
	afs := afero.NewMemMapFs()
	root := paths.MustAbsolute("/src")
	// Two file entries, neither backed by an actual file on disk.
	src1, _ := paths.NewSourceRelative("a")
	dest1, _ := paths.NewDestinationRelative("a")
	src2, _ := paths.NewSourceRelative("b")
	dest2, _ := paths.NewDestinationRelative("b")
	source := NewSourceState(map[string]SourceEntry{
		dest1.String(): {Kind: KindFile, SourcePath: src1, DestPath: dest1},
		dest2.String(): {Kind: KindFile, SourcePath: src2, DestPath: dest2},
	})

	_, err := BuildTargetState(context.Background(), source, upperProcessor{}, nil, filesystem.NewAfero(afs), root)
	assert.Error(t, err)
}

func TestBuildTargetStateSymlinkPassesThroughUnprocessed(t *testing.T) {
	afs := afero.NewMemMapFs()
	root := paths.MustAbsolute("/src")
	src, _ := paths.NewSourceRelative("link")
	dest, _ := paths.NewDestinationRelative("link")
	source := NewSourceState(map[string]SourceEntry{
		dest.String(): {Kind: KindSymlink, SourcePath: src, DestPath: dest, LinkTarget: "/etc/passwd"},
	})

	ts, err := BuildTargetState(context.Background(), source, upperProcessor{}, nil, filesystem.NewAfero(afs), root)
	require.NoError(t, err)
	entry, ok := ts.Get(dest)
	require.True(t, ok)
	assert.Equal(t, "/etc/passwd", entry.LinkText)
}
