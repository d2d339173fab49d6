// Package logging configures guisu's global zerolog logger. The core
// engine packages take a zerolog.Logger via GetLogger and never touch the
// global logger directly; only the CLI front end calls SetupLogger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/PaulYuuu/guisu/pkg/reconcile"
)

// SetupLogger configures the global logger based on verbosity level (0-3+).
// It writes to both stderr (pretty-printed) and a log file under
// $XDG_STATE_HOME/guisu/guisu.log, which is appended to, never rotated.
func SetupLogger(verbosity int) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	writers := []io.Writer{consoleWriter}

	logFile := getLogFilePath()
	logFileHandle, err := setupLogFile(logFile)
	if err == nil {
		writers = append(writers, logFileHandle)
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("failed to create log file, logging to console only")
	}

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("logger initialized")
}

// GetLogger returns a contextualized logger tagged with a component name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func getLogFilePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "guisu.log"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "guisu", "guisu.log")
}

func setupLogFile(logPath string) (*os.File, error) {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// LogOperationStart logs the start of an operation and returns a function
// to call on completion, which logs the elapsed duration.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("operation started")
	return func() {
		logger.Debug().Str("operation", operation).Dur("duration", time.Since(start)).Msg("operation completed")
	}
}

// LogPathStatus logs one path's reconciliation outcome. Statuses that need
// a human decision (Conflict, AddedConflict, ModifiedDest) are logged at
// warn level so they surface without -v; everything else is debug noise.
func LogPathStatus(logger zerolog.Logger, path string, status reconcile.Status) {
	event := logger.Debug()
	switch status {
	case reconcile.Conflict, reconcile.AddedConflict, reconcile.ModifiedDest:
		event = logger.Warn()
	}
	event.Str("path", path).Str("status", status.String()).Msg("path classified")
}

// LogDecision logs the Decision attached to a path immediately before the
// Applier acts on it.
func LogDecision(logger zerolog.Logger, path string, decision reconcile.Decision) {
	logger.Debug().Str("path", path).Str("decision", decision.String()).Msg("decision made")
}

// LogReconcileSummary logs one field per status with its path count, so a
// whole reconciliation pass is summarized in a single structured event.
func LogReconcileSummary(logger zerolog.Logger, counts map[reconcile.Status]int) {
	event := logger.Info()
	for _, s := range []reconcile.Status{
		reconcile.Synced, reconcile.Added, reconcile.AddedConflict,
		reconcile.ModifiedSource, reconcile.ModifiedDest, reconcile.Conflict,
		reconcile.Removed, reconcile.Ignored,
	} {
		if n, ok := counts[s]; ok {
			event = event.Int(fieldNameForStatus(s), n)
		}
	}
	event.Msg("reconciliation summary")
}

func fieldNameForStatus(s reconcile.Status) string {
	switch s {
	case reconcile.Synced:
		return "synced"
	case reconcile.Added:
		return "added"
	case reconcile.AddedConflict:
		return "addedConflict"
	case reconcile.ModifiedSource:
		return "modifiedSource"
	case reconcile.ModifiedDest:
		return "modifiedDest"
	case reconcile.Conflict:
		return "conflict"
	case reconcile.Removed:
		return "removed"
	default:
		return "ignored"
	}
}
