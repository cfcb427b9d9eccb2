// Package logger provides the process-wide leveled logger.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a logging severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the label printed in front of each message
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled messages to a single destination
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
}

var global = &Logger{level: LevelInfo, out: log.New(os.Stdout, "", log.LstdFlags)}

// Init configures the global logger
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	global.level = level
	global.out = log.New(output, "", log.LstdFlags)
}

// SetLevel changes the global log level
func SetLevel(level Level) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.level = level
}

// GetLevel returns the current global log level
func GetLevel() Level {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.level
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, v...)
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	global.logf(LevelDebug, format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	global.logf(LevelInfo, format, v...)
}

// Warning logs a warning message
func Warning(format string, v ...interface{}) {
	global.logf(LevelWarning, format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	global.logf(LevelError, format, v...)
}

// Fatal logs an error message and exits the program
func Fatal(format string, v ...interface{}) {
	global.logf(LevelError, format, v...)
	os.Exit(1)
}
