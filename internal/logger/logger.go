package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level marks the kind of log entry.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARN"
	LevelError   Level = "ERROR"
	LevelTrade   Level = "TRADE"
	LevelStatus  Level = "STATUS"
)

// Logger writes leveled trading activity to a per-session log file.
// It is constructed explicitly and passed to every component; there is
// no package-level instance.
type Logger struct {
	mu      sync.Mutex
	logger  *log.Logger
	logFile *os.File
	logPath string
}

// New creates a logger writing to <dir>/<symbol>_<interval>_<date>.log.
func New(dir, symbol, interval string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.log", symbol, interval, time.Now().Format("2006-01-02"))
	logPath := filepath.Join(dir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		logger:  log.New(file, "", 0),
		logFile: file,
		logPath: logPath,
	}

	l.Log(LevelStatus, "session started: %s %s", symbol, interval)
	return l, nil
}

// NewWithWriter creates a logger writing to an arbitrary writer.
// Used in tests.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{logger: log.New(w, "", 0)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

// Log writes a formatted entry with the given level.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf("[%s] [%s] %s", timestamp, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Trade logs an order or position event.
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LevelTrade, format, args...)
}

// Status logs periodic market and portfolio state.
func (l *Logger) Status(format string, args ...interface{}) {
	l.Log(LevelStatus, format, args...)
}

// Path returns the location of the log file, empty for writer-backed loggers.
func (l *Logger) Path() string {
	return l.logPath
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}
	l.logger.Printf("[%s] [%s] session ended", time.Now().Format("2006-01-02 15:04:05"), LevelStatus)
	return l.logFile.Close()
}
