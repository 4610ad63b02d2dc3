package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger is the leveled logging interface used by components that should not
// depend on slog directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter adapts a *slog.Logger to Logger. It also implements the
// Print/Printf logger interface expected by the self-update library, routing
// those lines to debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger falls back to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Logger returns the underlying slog logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// Print logs v at debug level, formatted like fmt.Print.
func (a *SlogAdapter) Print(v ...any) {
	a.logger.Debug(strings.TrimRight(fmt.Sprint(v...), "\n"))
}

// Printf logs at debug level, formatted like fmt.Printf.
func (a *SlogAdapter) Printf(format string, v ...any) {
	a.logger.Debug(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}
