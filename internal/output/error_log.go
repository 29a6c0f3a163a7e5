package output

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	// MaxLogSizeMB is the maximum size of the error log file before rotation
	MaxLogSizeMB = 10
	// MaxLogFiles is the maximum number of rotated log files to keep
	MaxLogFiles = 5
)

// ErrorLogger handles file-based error logging with rotation
type ErrorLogger struct {
	logPath  string
	mu       sync.Mutex
	maxSize  int64 // in bytes
	maxFiles int
}

// NewErrorLogger creates an ErrorLogger with the default rotation limits
func NewErrorLogger(logPath string) *ErrorLogger {
	return NewErrorLoggerWithLimits(logPath, MaxLogSizeMB, MaxLogFiles)
}

// NewErrorLoggerWithLimits creates an ErrorLogger that rotates once the file
// reaches maxSizeMB and keeps maxFiles old copies. Non-positive values use
// the defaults.
func NewErrorLoggerWithLimits(logPath string, maxSizeMB, maxFiles int) *ErrorLogger {
	if maxSizeMB <= 0 {
		maxSizeMB = MaxLogSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = MaxLogFiles
	}
	return &ErrorLogger{
		logPath:  logPath,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
	}
}

// LogError writes an error entry with timestamp, type, message and stack trace
func (e *ErrorLogger) LogError(errorType, errorMessage string, originalErr error) error {
	return e.LogSessionError(errorType, errorMessage, originalErr, "")
}

// LogSessionError is LogError with the engine session ID recorded in the entry
func (e *ErrorLogger) LogSessionError(errorType, errorMessage string, originalErr error, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.rotateIfNeeded(); err != nil {
		return fmt.Errorf("failed to rotate log: %w", err)
	}

	f, err := os.OpenFile(e.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var entry strings.Builder
	fmt.Fprintf(&entry, "[%s] ERROR: %s\n", time.Now().Format("2006-01-02 15:04:05"), errorMessage)
	fmt.Fprintf(&entry, "Type: %s\n", errorType)
	if sessionID != "" {
		fmt.Fprintf(&entry, "Session: %s\n", sessionID)
	}
	if originalErr != nil {
		fmt.Fprintf(&entry, "Details: %s\n", originalErr.Error())
	}
	entry.WriteString("Stack Trace:\n")
	entry.WriteString(e.getStackTrace())
	entry.WriteString("\n")

	if _, err := f.WriteString(entry.String()); err != nil {
		return fmt.Errorf("failed to write to error log: %w", err)
	}

	return nil
}

// rotateIfNeeded checks if the log file exceeds the size limit and rotates if necessary
func (e *ErrorLogger) rotateIfNeeded() error {
	// Check if log file exists and get its size
	info, err := os.Stat(e.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet, no rotation needed
			return nil
		}
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	// Check if rotation is needed
	if info.Size() < e.maxSize {
		return nil
	}

	// Perform rotation
	return e.rotate()
}

// rotate performs the actual log rotation
func (e *ErrorLogger) rotate() error {
	oldestLog := fmt.Sprintf("%s.%d", e.logPath, e.maxFiles)
	if _, err := os.Stat(oldestLog); err == nil {
		if err := os.Remove(oldestLog); err != nil {
			return fmt.Errorf("failed to remove oldest log: %w", err)
		}
	}

	for i := e.maxFiles - 1; i >= 1; i-- {
		oldName := fmt.Sprintf("%s.%d", e.logPath, i)
		newName := fmt.Sprintf("%s.%d", e.logPath, i+1)

		if _, err := os.Stat(oldName); err == nil {
			if err := os.Rename(oldName, newName); err != nil {
				return fmt.Errorf("failed to rotate log %s to %s: %w", oldName, newName, err)
			}
		}
	}

	rotatedName := fmt.Sprintf("%s.1", e.logPath)
	if err := os.Rename(e.logPath, rotatedName); err != nil {
		return fmt.Errorf("failed to rotate current log: %w", err)
	}

	return nil
}

// getStackTrace captures the current stack trace
func (e *ErrorLogger) getStackTrace() string {
	const maxStackDepth = 32
	stackBuf := make([]uintptr, maxStackDepth)
	length := runtime.Callers(4, stackBuf)
	stack := stackBuf[:length]

	var trace string
	frames := runtime.CallersFrames(stack)
	for {
		frame, more := frames.Next()
		trace += fmt.Sprintf("  at %s (%s:%d)\n", frame.Function, filepath.Base(frame.File), frame.Line)
		if !more {
			break
		}
	}

	return trace
}

// EnsureLogDirectory creates the log directory if it doesn't exist
func EnsureLogDirectory(logPath string) error {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}
