package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/tick/internal/app"
	"github.com/evanschultz/tick/internal/config"
)

// defaultDevLogDir is used when the config leaves logging.dev_file.dir blank.
const defaultDevLogDir = ".tick/log"

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

var _ app.Logger = (*runtimeLogger)(nil)

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := cfg.ParseLevel()
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	console := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{console},
		consoleSink:    console,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	path, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	logger.sinks = append(logger.sinks, charmLog.NewWithOptions(file, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	}))
	logger.closeFile = file.Close
	logger.devLog = path
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// ConsoleEnabled reports whether the console sink is live.
func (l *runtimeLogger) ConsoleEnabled() bool {
	return l != nil && l.consoleEnabled
}

func (l *runtimeLogger) each(fn func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if sink == l.consoleSink && !l.consoleEnabled {
			continue
		}
		fn(sink)
	}
}

// Debug logs a debug event to all live sinks.
func (l *runtimeLogger) Debug(msg any, keyvals ...any) {
	l.each(func(s *charmLog.Logger) { s.Debug(msg, keyvals...) })
}

// Info logs an informational event to all live sinks.
func (l *runtimeLogger) Info(msg any, keyvals ...any) {
	l.each(func(s *charmLog.Logger) { s.Info(msg, keyvals...) })
}

// Warn logs a warning event to all live sinks.
func (l *runtimeLogger) Warn(msg any, keyvals ...any) {
	l.each(func(s *charmLog.Logger) { s.Warn(msg, keyvals...) })
}

// Error logs an error event to all live sinks.
func (l *runtimeLogger) Error(msg any, keyvals ...any) {
	l.each(func(s *charmLog.Logger) { s.Error(msg, keyvals...) })
}

// devLogFilePath resolves the dev log file for the current day. Relative directories
// are anchored at the nearest workspace root.
func devLogFilePath(dir, appName string, now time.Time) (string, error) {
	base := strings.TrimSpace(dir)
	if base == "" {
		base = defaultDevLogDir
	}
	if !filepath.IsAbs(base) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		base = filepath.Join(workspaceRootFrom(cwd), base)
	}
	name := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(base), name), nil
}

// workspaceRootFrom walks up from start to the nearest go.mod or .git marker.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	for dir := start; ; {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return "tick"
	}
	return stem
}
