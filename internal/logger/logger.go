package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the launcher's own diagnostic log.
// Job output files are never rotated here; their naming is part of the
// operator contract.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes the launcher's diagnostic logging. When Path is empty
// log lines go to stderr only.
type Config struct {
	Path       string `json:"path" mapstructure:"path"`
	Level      string `json:"level" mapstructure:"level"` // debug, info, warn, error
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
	NoColor    bool   `json:"no_color" mapstructure:"no_color"`
}

// Writer returns the rotating file writer for Path, or nil when unset.
func (c Config) Writer() io.WriteCloser {
	if c.Path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// Setup installs the default slog logger: colored text on stderr, plus the
// rotating file when configured. It returns a closer for the file writer.
func Setup(c Config) func() {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}

	var handler slog.Handler
	fileW := c.Writer()
	if fileW != nil {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, fileW), opts)
	} else if c.NoColor {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = newConsoleHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	return func() {
		if fileW != nil {
			_ = fileW.Close()
		}
	}
}

// consoleHandler decorates slog's text output with an ANSI-colored level
// tag for interactive stderr use. File output stays uncolored.
type consoleHandler struct {
	slog.Handler
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return &consoleHandler{Handler: slog.NewTextHandler(w, opts)}
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Message = levelColor(r.Level) + r.Level.String() + colorReset + " " + r.Message
	return h.Handler.Handle(ctx, r)
}

const colorReset = "\x1b[0m"

// levelColor keys on thresholds rather than exact values so custom levels
// (e.g. LevelWarn+1) still pick a sensible color.
func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "\x1b[1;31m" // bold red
	case l >= slog.LevelWarn:
		return "\x1b[33m" // yellow
	case l >= slog.LevelInfo:
		return "\x1b[32m" // green
	default:
		return "\x1b[90m" // gray, debug and below
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
