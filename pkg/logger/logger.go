// Package logger builds the process-wide zerolog logger.
//
// Diagnostics go to stderr (or a file) so they never interleave with the
// tables and prompts the CLI prints on stdout.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config holds logger options.
type Config struct {
	Level     string // trace | debug | info | warn | error | disabled
	Format    string // auto | console | json
	Output    string // stderr | stdout | discard | file path
	AddCaller bool
	NoColor   bool
}

// DefaultConfig keeps the interactive session quiet: only warnings and errors.
func DefaultConfig() Config {
	return Config{
		Level:   "warn",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// New creates a logger from cfg.
// The returned close function releases the log file when Output is a path.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), noopClose, err
	}

	out, closeFn, err := openOutput(cfg.Output)
	if err != nil {
		return zerolog.Nop(), noopClose, err
	}

	l := zerolog.New(formatWriter(out, cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		l = l.With().Caller().Logger()
	}

	return l, closeFn, nil
}

// ParseLevel accepts zerolog level names plus "warning" and "off".
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zerolog.WarnLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "off", "none":
		return zerolog.Disabled, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

func openOutput(output string) (io.Writer, func() error, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, noopClose, nil
	case "stdout":
		return os.Stdout, noopClose, nil
	case "discard":
		return io.Discard, noopClose, nil
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, noopClose, fmt.Errorf("open log file: %w", err)
	}
	return file, file.Close, nil
}

// formatWriter picks console output for terminals and JSON otherwise.
func formatWriter(out io.Writer, cfg Config) io.Writer {
	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			format = "console"
		}
	}

	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor,
		}
	}
	return out
}

func noopClose() error { return nil }

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
