// Package logging provides leveled, prefixed logging for the filesystem.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var zerologLevels = map[LogLevel]zerolog.Level{
	LevelError: zerolog.ErrorLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelDebug: zerolog.DebugLevel,
	LevelTrace: zerolog.TraceLevel,
}

// Logger provides structured logging capabilities
type Logger struct {
	zl zerolog.Logger
	mu sync.RWMutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger("bookfs")

		// Set initial log level from environment
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			switch level {
			case "ERROR":
				defaultLogger.SetLevel(LevelError)
			case "WARN":
				defaultLogger.SetLevel(LevelWarn)
			case "INFO":
				defaultLogger.SetLevel(LevelInfo)
			case "DEBUG":
				defaultLogger.SetLevel(LevelDebug)
			case "TRACE":
				defaultLogger.SetLevel(LevelTrace)
			}
		}

		// Enable debug logging if FUSE_DEBUG is set
		if os.Getenv("FUSE_DEBUG") != "" {
			defaultLogger.SetLevel(LevelDebug)
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger scoped to the given subsystem prefix.
func NewLogger(prefix string) *Logger {
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05.000"}
	zl := zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("subsystem", prefix).
		Logger()
	return &Logger{zl: zl}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl = l.zl.Level(zerologLevels[level])
}

// WithPrefix creates a new logger with an additional subsystem prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{zl: l.zl.With().Str("subsystem", prefix).Logger()}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.zl.Error().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.zl.Warn().Msgf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.zl.Info().Msgf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.zl.Debug().Msgf(format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.zl.Trace().Msgf(format, args...)
}
