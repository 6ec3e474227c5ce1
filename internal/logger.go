package internal

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	logger   = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "chatlegis",
		ReportTimestamp: false,
	})
	l.SetLevel(toCharmLevel(logLevel))
	return l
}

func toCharmLevel(level LogLevel) log.Level {
	switch level {
	case LogLevelError:
		return log.ErrorLevel
	case LogLevelWarn:
		return log.WarnLevel
	case LogLevelDebug:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	logger.SetLevel(toCharmLevel(level))
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// ParseLogLevel converts a level name to a LogLevel, defaulting to info
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// SetLogOutput redirects log output (tests use a buffer)
func SetLogOutput(w io.Writer) {
	logger = newLogger(w)
}

// LogError logs an error message with optional key/value pairs
func LogError(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// LogWarn logs a warning message with optional key/value pairs
func LogWarn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// LogInfo logs an info message with optional key/value pairs
func LogInfo(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with optional key/value pairs
func LogDebug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}
