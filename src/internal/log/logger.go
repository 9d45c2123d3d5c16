package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu          sync.RWMutex
	verbose     = false
	disableLogs = false
	logger      = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "botiplist",
	})
	l.SetLevel(charmlog.InfoLevel)
	return l
}

// SetVerbose sets the logging verbosity. If true, debug messages are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		logger.SetLevel(charmlog.DebugLevel)
	} else {
		logger.SetLevel(charmlog.InfoLevel)
	}
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	defer mu.Unlock()
	disableLogs = true
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return disableLogs
}

// SetOutput redirects log output. Used by tests to capture messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level := logger.GetLevel()
	logger = newLogger(w)
	logger.SetLevel(level)
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *charmlog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs {
		return charmlog.New(io.Discard)
	}
	return logger.With(keyvals...)
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	logMessage(charmlog.DebugLevel, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logMessage(charmlog.InfoLevel, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logMessage(charmlog.WarnLevel, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logMessage(charmlog.ErrorLevel, format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	logMessage(charmlog.ErrorLevel, format, args...)
	os.Exit(1)
}

func logMessage(level charmlog.Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs {
		return
	}
	logger.Log(level, fmt.Sprintf(format, args...))
}
