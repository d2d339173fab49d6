package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulYuuu/guisu/pkg/reconcile"
)

func TestGetLogFilePathUsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "guisu", "guisu.log"), getLogFilePath())
}

func TestSetupLogFileCreatesDirAndFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "guisu.log")
	f, err := setupLogFile(logPath)
	require.NoError(t, err)
	defer f.Close()

	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

func TestLogOperationStartReturnsCompletionFunc(t *testing.T) {
	logger := GetLogger("test")
	done := LogOperationStart(logger, "unit-test-op")
	assert.NotPanics(t, func() { done() })
}

func TestSetupLoggerDoesNotPanicAtAnyVerbosity(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	for v := 0; v <= 3; v++ {
		assert.NotPanics(t, func() { SetupLogger(v) })
	}
}

func TestLogPathStatusDoesNotPanicForAnyStatus(t *testing.T) {
	logger := GetLogger("test")
	statuses := []reconcile.Status{
		reconcile.Synced, reconcile.Added, reconcile.AddedConflict,
		reconcile.ModifiedSource, reconcile.ModifiedDest, reconcile.Conflict,
		reconcile.Removed, reconcile.Ignored,
	}
	for _, s := range statuses {
		assert.NotPanics(t, func() { LogPathStatus(logger, ".bashrc", s) })
	}
}

func TestLogDecisionDoesNotPanicForAnyDecision(t *testing.T) {
	logger := GetLogger("test")
	decisions := []reconcile.Decision{reconcile.Skip, reconcile.Apply, reconcile.Delete}
	for _, d := range decisions {
		assert.NotPanics(t, func() { LogDecision(logger, ".bashrc", d) })
	}
}

func TestLogReconcileSummaryDoesNotPanic(t *testing.T) {
	logger := GetLogger("test")
	counts := map[reconcile.Status]int{
		reconcile.Synced:  3,
		reconcile.Added:   1,
		reconcile.Removed: 1,
	}
	assert.NotPanics(t, func() { LogReconcileSummary(logger, counts) })
}
