package apply

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulYuuu/guisu/pkg/filesystem"
	"github.com/PaulYuuu/guisu/pkg/ledger"
	"github.com/PaulYuuu/guisu/pkg/paths"
	"github.com/PaulYuuu/guisu/pkg/reconcile"
	"github.com/PaulYuuu/guisu/pkg/state"
)

func newTestApplier(t *testing.T) (*Applier, filesystem.FS, *ledger.Ledger, paths.AbsolutePath) {
	t.Helper()
	afs := afero.NewMemMapFs()
	fsys := filesystem.NewAfero(afs)
	root := paths.MustAbsolute("/dest")
	require.NoError(t, afs.MkdirAll("/dest", 0o755))

	l, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	return New(fsys, root, l), fsys, l, root
}

// Scenario A: plain file, first application.
func TestApplyWritesNewFileAndLedgerRecord(t *testing.T) {
	a, fsys, l, root := newTestApplier(t)

	rel, _ := paths.NewDestinationRelative(".bashrc")
	fileMode := fileModePtr(0o644)
	target := state.NewTargetState(map[string]state.TargetEntry{
		rel.String(): {Kind: state.KindFile, DestPath: rel, Content: []byte("hello\n"), Mode: fileMode},
	})
	decisions := map[string]reconcile.Decision{rel.String(): reconcile.Apply}

	report, err := a.Apply(context.Background(), target, decisions)
	require.NoError(t, err)
	assert.Equal(t, []string{".bashrc"}, report.Added)
	assert.Empty(t, report.Errors)

	data, err := fsys.ReadFile(root.JoinDest(rel).String())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	rec, ok, err := l.Get(".bashrc")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, rec.Mode)
	assert.Equal(t, uint32(0o644), *rec.Mode)
}

func TestApplySkipLeavesLedgerUntouched(t *testing.T) {
	a, _, l, _ := newTestApplier(t)
	require.NoError(t, l.Set(".bashrc", ledger.Record{Fingerprint: [32]byte{1}}))

	rel, _ := paths.NewDestinationRelative(".bashrc")
	target := state.NewTargetState(map[string]state.TargetEntry{
		rel.String(): {Kind: state.KindFile, DestPath: rel, Content: []byte("v2")},
	})
	decisions := map[string]reconcile.Decision{rel.String(): reconcile.Skip}

	report, err := a.Apply(context.Background(), target, decisions)
	require.NoError(t, err)
	assert.Equal(t, []string{".bashrc"}, report.Skipped)

	rec, ok, err := l.Get(".bashrc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [32]byte{1}, rec.Fingerprint)
}

// Scenario F: path removed from source.
func TestApplyDeleteRemovesFileAndLedgerEntry(t *testing.T) {
	a, fsys, l, root := newTestApplier(t)
	rel, _ := paths.NewDestinationRelative(".oldrc")
	require.NoError(t, fsys.WriteFile(root.JoinDest(rel).String(), []byte("v1"), 0o644))
	require.NoError(t, l.Set(".oldrc", ledger.Record{Fingerprint: [32]byte{1}}))

	target := state.NewTargetState(map[string]state.TargetEntry{})
	decisions := map[string]reconcile.Decision{rel.String(): reconcile.Delete}

	report, err := a.Apply(context.Background(), target, decisions)
	require.NoError(t, err)
	assert.Equal(t, []string{".oldrc"}, report.Removed)

	_, err = fsys.Stat(root.JoinDest(rel).String())
	assert.Error(t, err)
	_, ok, err := l.Get(".oldrc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyDirectoryCreatesBeforeFile(t *testing.T) {
	a, fsys, _, root := newTestApplier(t)
	dirRel, _ := paths.NewDestinationRelative(".config")
	fileRel, _ := paths.NewDestinationRelative(".config/init.vim")

	dirMode := fileModePtr(0o755)
	target := state.NewTargetState(map[string]state.TargetEntry{
		dirRel.String():  {Kind: state.KindDirectory, DestPath: dirRel, Mode: dirMode},
		fileRel.String(): {Kind: state.KindFile, DestPath: fileRel, Content: []byte("x"), Mode: fileModePtr(0o644)},
	})
	decisions := map[string]reconcile.Decision{
		dirRel.String():  reconcile.Apply,
		fileRel.String(): reconcile.Apply,
	}

	report, err := a.Apply(context.Background(), target, decisions)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)

	info, err := fsys.Stat(root.JoinDest(dirRel).String())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestApplySymlinkNoopWhenAlreadyCorrect(t *testing.T) {
	a, fsys, _, root := newTestApplier(t)
	rel, _ := paths.NewDestinationRelative("link")
	require.NoError(t, fsys.Symlink("/a", root.JoinDest(rel).String()))

	target := state.NewTargetState(map[string]state.TargetEntry{
		rel.String(): {Kind: state.KindSymlink, DestPath: rel, LinkText: "/a"},
	})
	decisions := map[string]reconcile.Decision{rel.String(): reconcile.Apply}

	report, err := a.Apply(context.Background(), target, decisions)
	require.NoError(t, err)
	assert.Equal(t, []string{"link"}, report.Modified)
}

func fileModePtr(m fs.FileMode) *fs.FileMode {
	return &m
}
