package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temp log directory and resets
// the run-scoped globals, restoring everything on cleanup.
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origRunID := runID

	// Mark directory init as already done so NewLogger uses tempDir
	// instead of re-resolving ~/.waypoint/logs.
	initOnce = sync.Once{}
	initOnce.Do(func() {})
	initErr = nil
	logDir = tempDir
	runIDOnce = sync.Once{}
	runID = ""

	t.Cleanup(func() {
		initOnce = sync.Once{}
		initOnce.Do(func() {})
		initErr = nil
		logDir = origLogDir
		runIDOnce = sync.Once{}
		runIDOnce.Do(func() {})
		runID = origRunID
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("driver")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "driver" {
		t.Errorf("Expected component 'driver', got %q", logger.component)
	}
	if logger.RunID() == "" {
		t.Error("Expected non-empty run ID")
	}
	if logger.LogPath() == "" {
		t.Error("Expected non-empty log path")
	}

	if _, err := os.Stat(logger.LogPath()); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.LogPath())
	}
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Info message %d", 123)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	logContent := string(content)
	expectedPatterns := []string{
		"[test] [DEBUG] Debug message",
		"[test] [INFO] Info message 123",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	driverLog, err := NewLogger("driver")
	if err != nil {
		t.Fatalf("Failed to create driver logger: %v", err)
	}
	defer driverLog.Close()

	runnerLog, err := NewLogger("runner")
	if err != nil {
		t.Fatalf("Failed to create runner logger: %v", err)
	}
	defer runnerLog.Close()

	// Same run, same file.
	if driverLog.RunID() != runnerLog.RunID() {
		t.Errorf("Expected same run ID, got %q and %q", driverLog.RunID(), runnerLog.RunID())
	}
	if driverLog.LogPath() != runnerLog.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", driverLog.LogPath(), runnerLog.LogPath())
	}

	driverLog.Infof("session started")
	runnerLog.Infof("scenario passed")

	content, err := os.ReadFile(driverLog.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	logContent := string(content)
	if !strings.Contains(logContent, "[driver]") {
		t.Error("Log missing driver entries")
	}
	if !strings.Contains(logContent, "[runner]") {
		t.Error("Log missing runner entries")
	}
}

func TestRunID(t *testing.T) {
	setupTestDir(t)

	id1 := RunID()
	id2 := RunID()

	if id1 != id2 {
		t.Errorf("Expected consistent run ID, got %q and %q", id1, id2)
	}
	if id1 == "" {
		t.Error("Expected non-empty run ID")
	}
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-waypoint.log") {
		t.Errorf("Expected log file to end with '-waypoint.log', got %q", fileName)
	}

	runPart := strings.TrimSuffix(fileName, "-waypoint.log")
	if !strings.Contains(runPart, "-") {
		t.Errorf("Expected run ID part to be UUID-shaped, got %q", runPart)
	}
}
