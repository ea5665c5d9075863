package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lecturedl/internal/config"
)

// Options selects the level and format of a single-sink logger.
type Options struct {
	Level  string
	Format string
}

// New builds a logger writing to w. Debug level also records the caller.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	handler, err := newHandler(opts.Format, w, levelVar)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

// NewFromConfig creates the process logger: console or JSON output on stderr
// plus a JSON journal appended to the configured log file.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(os.Stderr, Options{})
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(cfg.Logging.Level))

	console, err := newHandler(cfg.Logging.Format, os.Stderr, levelVar)
	if err != nil {
		return nil, err
	}

	logPath := cfg.LogPath()
	if logPath == "" {
		return slog.New(console), nil
	}
	journal, err := openJournal(logPath)
	if err != nil {
		return nil, err
	}
	return slog.New(newFanoutHandler(console, newJSONHandler(journal, levelVar, true))), nil
}

func newHandler(format string, w io.Writer, levelVar *slog.LevelVar) (slog.Handler, error) {
	addSource := levelVar.Level() <= slog.LevelDebug
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return newJSONHandler(w, levelVar, addSource), nil
	case "console", "":
		return newConsoleHandler(w, levelVar, addSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", format)
	}
}

// openJournal opens path for appending, creating its directory as needed.
func openJournal(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// ParseLevel maps a config level string onto slog levels. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	return parseLevel(level)
}

func parseLevel(level string) slog.Level {
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
