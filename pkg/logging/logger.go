// Package logging provides per-run file logging for harness
// components. All components in one test run append to the same log
// file under ~/.waypoint/logs/, keyed by a run ID, so a flaky run can
// be reconstructed after the fact without polluting test output.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes component-tagged entries to the run's log file.
//
// All log methods write unconditionally; there is no level filtering.
// Loggers are safe for concurrent use.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	logPath   string
	mu        sync.Mutex
	closeOnce sync.Once
}

var (
	// Run ID shared by every component in this process.
	runID     string
	runIDOnce sync.Once

	// logDir is where run log files live.
	logDir   string
	initOnce sync.Once
	initErr  error
)

func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".waypoint", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for one component. It writes to
// ~/.waypoint/logs/<run-id>-waypoint.log, shared by all components of
// the run. If the file cannot be opened it returns a stderr-backed
// fallback logger together with the error, so callers keep a usable
// logger either way.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	id := getRunID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-waypoint.log", id))

	// Append mode: multiple components share the file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		runID:     id,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0), // timestamps are formatted below
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, cause error) *Logger {
	fallback := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	fallback.Printf("WARNING: file logging unavailable, using stderr: %v", cause)

	return &Logger{
		runID:     getRunID(),
		component: component,
		logger:    fallback,
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// RunID returns the run ID shared by all loggers in this process.
func (l *Logger) RunID() string { return l.runID }

// LogPath returns the path of the run's log file; empty in fallback
// mode.
func (l *Logger) LogPath() string { return l.logPath }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// RunID returns the process-wide run ID, creating it on first use.
func RunID() string {
	return getRunID()
}

// LogDirectory returns the directory where run logs are stored.
func LogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
