package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults follow lumberjack semantics.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes the sequencer's own log destination. Stage subprocess
// output is passed through untouched; this logger only carries the
// orchestration record (stage entry, outcome, warnings).
type Config struct {
	Level      string `json:"level" mapstructure:"level"` // debug, info, warn, error
	File       string `json:"file" mapstructure:"file"`   // optional rotated mirror file
	NoColor    bool   `json:"no_color" mapstructure:"no_color"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// New builds a slog.Logger writing to stderr (keeping stdout free for stage
// subprocess output) and, when File is set, mirroring to a rotated file.
// The returned closer owns the file writer; it is nil when no file is used.
func (c Config) New() (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	var closer io.Closer
	if c.File != "" {
		file := &lj.Logger{
			Filename:   c.File,
			MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   c.Compress,
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if c.NoColor || c.File != "" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = NewColorTextHandler(w, opts)
	}
	return slog.New(h), closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
