// Package app provides logger integration for applications.
package app

import (
	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
)

// Logger returns the global logger instance.
func Logger() core.Logger {
	return logger.Global()
}

// Infow logs an info message with structured fields using the global logger.
func Infow(msg string, keysAndValues ...interface{}) {
	logger.Infow(msg, keysAndValues...)
}

// Warnw logs a warning message with structured fields using the global logger.
func Warnw(msg string, keysAndValues ...interface{}) {
	logger.Warnw(msg, keysAndValues...)
}

// Errorw logs an error message with structured fields using the global logger.
func Errorw(msg string, keysAndValues ...interface{}) {
	logger.Errorw(msg, keysAndValues...)
}

// Fatalw logs a fatal message with structured fields using the global logger.
func Fatalw(msg string, keysAndValues ...interface{}) {
	logger.Fatalw(msg, keysAndValues...)
}

// Flush flushes any buffered log entries using the global logger.
func Flush() error {
	return logger.Flush()
}
