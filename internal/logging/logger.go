// Package logging provides the process-wide logrus logger for FlowTagger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger = newLogger(os.Stdout, logrus.InfoLevel)
	loggerMu      sync.RWMutex
)

// Options configures the logger.
type Options struct {
	// Level is the minimum log level to output
	Level logrus.Level
	// Output is where logs are written (default: os.Stdout)
	Output io.Writer
}

// ParseLevel converts a string to a logrus level.
// Returns InfoLevel if the string is not recognized.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return l
}

// Setup replaces the global logger.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = newLogger(out, opts.Level)
}

// SetupFromConfig initializes the logger from a log level string.
func SetupFromConfig(level string) {
	Setup(Options{Level: ParseLevel(level)})
}

// Logger returns the global logger instance.
func Logger() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// WithComponent returns an entry tagged with the component that generated it.
func WithComponent(component string) *logrus.Entry {
	return Logger().WithField("component", component)
}
