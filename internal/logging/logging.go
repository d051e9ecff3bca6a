// Package logging owns the process logger. Components obtain a prefixed child
// with For and log structured key/value pairs.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Config holds logging configuration
type Config struct {
	Level      string
	TimeFormat string
	ShowCaller bool
	Output     io.Writer
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		TimeFormat: "15:04:05",
		ShowCaller: false,
		Output:     os.Stderr,
	}
}

var (
	mu   sync.RWMutex
	base = newLogger(DefaultConfig())
)

func newLogger(cfg Config) *log.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}
	l := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		ReportCaller:    cfg.ShowCaller,
	})
	l.SetLevel(ParseLevel(cfg.Level))
	return l
}

// Init replaces the process logger. Loggers returned by For before Init keep
// their previous settings.
func Init(cfg Config) {
	l := newLogger(cfg)
	mu.Lock()
	base = l
	mu.Unlock()
}

// SetLevel changes the level of the process logger at runtime
func SetLevel(level string) {
	mu.RLock()
	defer mu.RUnlock()
	base.SetLevel(ParseLevel(level))
}

// ParseLevel maps a config string onto a level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// For returns a logger tagged with the component name.
func For(component string) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithPrefix(component)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
