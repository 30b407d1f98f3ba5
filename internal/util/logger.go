package util

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with scope prefixes and in-memory capture.
// One Logger (and one capture buffer) is shared by a mocker instance
// and everything it owns; WithScope returns a view with a different
// prefix over the same underlying logger.
type Logger struct {
	*logrus.Logger
	scope string
	hook  *CaptureHook
}

// NewLogger creates a new logger at the given level. Unknown levels
// fall back to info.
func NewLogger(level string) *Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	hook := &CaptureHook{}
	logger.AddHook(hook)

	return &Logger{
		Logger: logger,
		hook:   hook,
	}
}

// NewNopLogger creates a logger that discards everything. Used as the
// default when a caller does not supply a log level of their own.
func NewNopLogger() *Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.PanicLevel)
	return &Logger{Logger: logger}
}

// WithScope returns a logger that prefixes every message with [scope].
func (l *Logger) WithScope(scope string) *Logger {
	return &Logger{
		Logger: l.Logger,
		scope:  scope,
		hook:   l.hook,
	}
}

func (l *Logger) format(msg string) string {
	if l.scope != "" {
		return fmt.Sprintf("[%s] %s", l.scope, msg)
	}
	return msg
}

// Debug logs a debug message.
func (l *Logger) Debug(args ...interface{}) {
	l.Logger.Debug(l.format(fmt.Sprint(args...)))
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Logger.Debug(l.format(fmt.Sprintf(format, args...)))
}

// Info logs an info message.
func (l *Logger) Info(args ...interface{}) {
	l.Logger.Info(l.format(fmt.Sprint(args...)))
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logger.Info(l.format(fmt.Sprintf(format, args...)))
}

// Warn logs a warning message.
func (l *Logger) Warn(args ...interface{}) {
	l.Logger.Warn(l.format(fmt.Sprint(args...)))
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logger.Warn(l.format(fmt.Sprintf(format, args...)))
}

// Error logs an error message.
func (l *Logger) Error(args ...interface{}) {
	l.Logger.Error(l.format(fmt.Sprint(args...)))
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logger.Error(l.format(fmt.Sprintf(format, args...)))
}

// LogEntry is one captured log line.
type LogEntry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// CaptureHook keeps log entries in memory so they can be served back
// over the admin API. Entries accumulate for the process lifetime.
type CaptureHook struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Levels returns the levels the hook fires on.
func (h *CaptureHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire records a log entry.
func (h *CaptureHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, LogEntry{
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Timestamp: entry.Time.Format(time.RFC3339),
	})
	return nil
}

// Entries returns a copy of the captured entries.
func (l *Logger) Entries() []LogEntry {
	if l.hook == nil {
		return nil
	}
	l.hook.mu.Lock()
	defer l.hook.mu.Unlock()
	out := make([]LogEntry, len(l.hook.entries))
	copy(out, l.hook.entries)
	return out
}
