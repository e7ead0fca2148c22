// Package logging provides structured JSON logging for the sync core.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// global logger instance
	global *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger. Repeated calls are no-ops.
func Init(out io.Writer, level string) {
	once.Do(func() {
		global = newLogger(out, level)
	})
}

// Get returns the global logger instance, initializing it with defaults
// if Init was never called.
func Get() *logrus.Logger {
	if global == nil {
		Init(os.Stdout, "info")
	}
	return global
}

func newLogger(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return l
}

// Debug logs a debug message with optional context fields.
func Debug(message string, context ...map[string]interface{}) {
	Get().WithFields(merge(context...)).Debug(message)
}

// Info logs an info message with optional context fields.
func Info(message string, context ...map[string]interface{}) {
	Get().WithFields(merge(context...)).Info(message)
}

// Warn logs a warning message with optional context fields.
func Warn(message string, context ...map[string]interface{}) {
	Get().WithFields(merge(context...)).Warn(message)
}

// Error logs an error message with optional context fields.
func Error(message string, err error, context ...map[string]interface{}) {
	fields := merge(context...)
	if err != nil {
		fields["error"] = err.Error()
	}
	Get().WithFields(fields).Error(message)
}

// merge flattens multiple context maps into logrus fields.
func merge(context ...map[string]interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for _, c := range context {
		for k, v := range c {
			fields[k] = v
		}
	}
	return fields
}
