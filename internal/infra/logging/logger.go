// Package logging provides file-based logging for tasker.
// Entries are appended to a single log file under the state directory
// (logs/tasker.log), tagged with the task they concern or "global".
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/tasker/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger appends formatted entries to the log file.
// Fields are ordered to minimize memory padding.
type Logger struct {
	file     *os.File
	now      func() time.Time
	stateDir string
	mu       sync.Mutex
	level    slog.Level
}

// New creates a new Logger that writes under stateDir.
// If stateDir is empty, logging is disabled (returns a no-op logger).
// The file is opened lazily on the first entry.
func New(stateDir string, level slog.Level) *Logger {
	return &Logger{
		stateDir: stateDir,
		level:    level,
		now:      time.Now,
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Path returns the log file path, or "" if logging is disabled.
func (l *Logger) Path() string {
	if l.stateDir == "" {
		return ""
	}
	return domain.LogPath(l.stateDir)
}

// ensureFile opens or returns the log file. Caller must hold l.mu.
func (l *Logger) ensureFile() (*os.File, error) {
	if l.file != nil {
		return l.file, nil
	}

	path := domain.LogPath(l.stateDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	return f, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// formatLog formats a log entry in the specified format.
// Format: [2025-12-30 09:32:51] [INFO] [task-1] [category] message
func formatLog(t time.Time, level slog.Level, taskID int, category, msg string) string {
	taskStr := "global"
	if taskID > 0 {
		taskStr = fmt.Sprintf("task-%d", taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		taskStr,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, taskID int, category, msg string) {
	if l.stateDir == "" {
		return // Logging disabled
	}

	if level < l.level {
		return // Skip if below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.ensureFile()
	if err != nil {
		return
	}
	_, _ = io.WriteString(f, formatLog(l.now(), level, taskID, category, msg))
}

// Info logs an info message.
func (l *Logger) Info(taskID int, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID int, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID int, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID int, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}
