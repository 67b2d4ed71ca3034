package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. Diagnostics go to stderr so that
// per-host report lines on stdout stay clean.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.WarnLevel)
	Logger.SetFormatter(textFormatter())
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

// SetupLogging applies the CLI logging flags: warn level unless debug,
// text unless jsonFormat.
func SetupLogging(debug, jsonFormat bool) {
	level := logrus.WarnLevel
	if debug {
		level = logrus.DebugLevel
	}
	Logger.SetLevel(level)

	if jsonFormat {
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	} else {
		Logger.SetFormatter(textFormatter())
	}
}

// SetLogLevel sets the logging level by name
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithHost returns a logger tagged with the target host
func WithHost(host string) *logrus.Entry {
	return Logger.WithField("host", host)
}

// WithOperation returns a logger tagged with a run stage
func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
