// Package bootgate gates a container's entrypoint on database readiness and
// an ordered, idempotent bootstrap pipeline, then execs the supervised
// process. This file is a thin public facade over the internal packages for
// embedding the sequencer in other programs.
package bootgate

import (
	"context"
	"log/slog"

	"github.com/bootgate/bootgate/internal/config"
	"github.com/bootgate/bootgate/internal/gate"
	"github.com/bootgate/bootgate/internal/probe"
	"github.com/bootgate/bootgate/internal/sequencer"
	"github.com/bootgate/bootgate/internal/stage"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type Stage = stage.Stage

type FailurePolicy = stage.FailurePolicy

const (
	PolicyFatal = stage.PolicyFatal
	PolicyWarn  = stage.PolicyWarn
)

// ErrGateTimeout is returned by Run when the readiness ceiling is exceeded.
var ErrGateTimeout = gate.ErrTimeout

// LoadConfig parses configuration from the environment plus an optional TOML
// file (empty path skips the file).
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Sequencer is a thin facade over internal/sequencer.Sequencer.
type Sequencer struct{ inner *sequencer.Sequencer }

func New(cfg *Config, log *slog.Logger) (*Sequencer, error) {
	inner, err := sequencer.New(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Sequencer{inner: inner}, nil
}

// Run executes the readiness gate, the stage pipeline, and (when argv is
// non-empty) the handoff. On successful handoff it never returns.
func (s *Sequencer) Run(ctx context.Context, argv []string) error {
	return s.inner.Run(ctx, argv)
}

// WaitForDatabase runs only the readiness gate described by cfg.
func WaitForDatabase(ctx context.Context, cfg *Config, log *slog.Logger) error {
	prober, err := probe.New(cfg.DB.ProbeSettings())
	if err != nil {
		return err
	}
	g := gate.Gate{
		Prober:      prober,
		Interval:    cfg.Gate.Interval,
		MaxAttempts: cfg.Gate.MaxAttempts,
		Logger:      log,
	}
	return g.Wait(ctx)
}
