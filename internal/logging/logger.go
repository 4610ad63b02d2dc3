package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures New.
type Options struct {
	// Format is "text" (default) or "json".
	Format string
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Debug lowers the level to debug regardless of Level.
	Debug bool
	// Output defaults to os.Stderr. Stdout is reserved for the stdio transport.
	Output io.Writer
}

// New builds a slog logger from opts.
func New(opts Options) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("unsupported log level %q: %w", opts.Level, err)
		}
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: text, json)", opts.Format)
	}
}
