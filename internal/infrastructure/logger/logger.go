package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultService = "minibank"

// Config selects level and encoding. Format "console" renders human readable
// lines; anything else writes one JSON object per line.
type Config struct {
	Level   string
	Format  string
	Service string
}

// New builds the process logger on stdout.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds the logger on w. Every entry carries a timestamp and
// the service name.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	service := cfg.Service
	if service == "" {
		service = defaultService
	}

	return zerolog.New(w).
		Level(levelOf(cfg.Level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// levelOf falls back to info for empty or unrecognised names.
func levelOf(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
