// Package log provides the logging infrastructure for veracode-mcp.
//
// Loggers are injected, never global: each component receives a
// log.Logger via its constructor and may add context with With().
//
//	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel)})
//	client, err := veracode.NewClient(veracode.ClientConfig{
//	    Logger: logger.With("component", "veracode"),
//	    ...
//	})
//
// All output goes to stderr. When the server runs over the stdio
// transport, stdout carries the MCP protocol stream and must stay
// clean; a single stray log line there corrupts the session.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a type alias for *slog.Logger. Using the standard library
// type directly keeps components compatible with the slog ecosystem and
// avoids a custom interface nobody else implements.
type Logger = *slog.Logger

// Config defines logger options.
type Config struct {
	// Level is the minimum level emitted. Default: slog.LevelInfo.
	Level slog.Level

	// JSON switches output from logfmt-style text to JSON.
	JSON bool

	// AddSource annotates records with the source file and line.
	AddSource bool
}

// ParseLevel maps a configuration string ("debug", "info", "warn",
// "error") to a slog.Level. Unknown values fall back to info; the
// config layer validates the string before it gets here.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to os.Stderr. Stdout is reserved for the
// MCP stdio transport.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger writing to w. Used by tests to capture
// output in a buffer.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards everything. Test-only: wiring
// it into production code silently eats diagnostics.
func NewNop() Logger {
	return slog.New(slog.DiscardHandler)
}
