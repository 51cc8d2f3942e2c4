package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"birdsort/internal/config"
)

// LogFileName is the file written under paths.log_dir.
const LogFileName = "birdsort.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string // "console" or "json"
	// Console receives every record. Nil means stderr; use io.Discard to log
	// only to File.
	Console io.Writer
	// File is appended to when set. Its directory is created if needed.
	File string
}

// New constructs a slog logger using the provided options. Caller locations
// are included at debug level. The returned closer releases the log file and
// must be called once the logger is no longer used.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "json" && format != "console" && format != "" {
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := levelVar.Level() <= slog.LevelDebug

	w, closer, err := openOutput(opts.Console, opts.File)
	if err != nil {
		return nil, nil, err
	}
	if format == "json" {
		return slog.New(newJSONHandler(w, levelVar, addSource)), closer, nil
	}
	return slog.New(newConsoleHandler(w, levelVar, addSource)), closer, nil
}

// NewFromConfig creates a logger that writes to stderr and to birdsort.log in
// the configured log directory. Stdout stays free for command output.
func NewFromConfig(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	opts := Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if cfg.Paths.LogDir != "" {
		opts.File = filepath.Join(cfg.Paths.LogDir, LogFileName)
	}
	return New(opts)
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openOutput(console io.Writer, file string) (io.Writer, io.Closer, error) {
	if console == nil {
		console = os.Stderr
	}
	file = strings.TrimSpace(file)
	if file == "" {
		return console, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", file, err)
	}
	if console == io.Discard {
		return f, f, nil
	}
	return io.MultiWriter(console, f), f, nil
}
