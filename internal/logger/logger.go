package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	levelVar   slog.LevelVar
	loggerMu   sync.RWMutex
	baseLogger *slog.Logger
)

func init() {
	levelVar.Set(slog.LevelInfo)
	baseLogger = newLogger(os.Stdout)
}

func newLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &levelVar})
	return slog.New(handler)
}

// SetOutput swaps the sink for every logger, including ones already handed out by Named.
func SetOutput(w io.Writer) {
	loggerMu.Lock()
	baseLogger = newLogger(w)
	loggerMu.Unlock()
}

func SetLevel(level string) {
	levelVar.Set(ParseLevel(level))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func activeLogger() *slog.Logger {
	loggerMu.RLock()
	l := baseLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if baseLogger == nil {
		baseLogger = newLogger(os.Stdout)
	}
	return baseLogger
}

func Debugf(format string, v ...any) {
	activeLogger().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	activeLogger().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	activeLogger().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	activeLogger().Error(fmt.Sprintf(format, v...))
}

// Component tags every line with component=<name>.
type Component struct {
	name  string
	attrs []any
}

// Named returns a component logger, e.g. logger.Named("fetcher").
func Named(name string) *Component {
	return &Component{name: strings.TrimSpace(name)}
}

// With returns a copy carrying extra key/value attributes.
func (c *Component) With(kv ...any) *Component {
	if c == nil {
		return Named("").With(kv...)
	}
	attrs := make([]any, 0, len(c.attrs)+len(kv))
	attrs = append(attrs, c.attrs...)
	attrs = append(attrs, kv...)
	return &Component{name: c.name, attrs: attrs}
}

func (c *Component) logger() *slog.Logger {
	l := activeLogger()
	if c == nil {
		return l
	}
	if c.name != "" {
		l = l.With("component", c.name)
	}
	if len(c.attrs) > 0 {
		l = l.With(c.attrs...)
	}
	return l
}

func (c *Component) Debugf(format string, v ...any) {
	c.logger().Debug(fmt.Sprintf(format, v...))
}

func (c *Component) Infof(format string, v ...any) {
	c.logger().Info(fmt.Sprintf(format, v...))
}

func (c *Component) Warnf(format string, v ...any) {
	c.logger().Warn(fmt.Sprintf(format, v...))
}

func (c *Component) Errorf(format string, v ...any) {
	c.logger().Error(fmt.Sprintf(format, v...))
}
