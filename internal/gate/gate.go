// Package gate implements the readiness gate guarding the startup sequence:
// no stage runs until the database dependency answers a probe.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bootgate/bootgate/internal/probe"
)

// ErrTimeout is returned when MaxAttempts probes all failed.
var ErrTimeout = errors.New("timed out waiting for database")

const DefaultInterval = 2 * time.Second

// Gate polls a Prober until it succeeds. With MaxAttempts == 0 it polls
// forever, deferring to the container runtime's restart semantics instead of
// fast-failing; operators relying on crash-loop detection should set a
// ceiling.
type Gate struct {
	Prober      probe.Prober
	Interval    time.Duration // sleep between attempts; DefaultInterval when <= 0
	MaxAttempts int           // 0 = unbounded
	Logger      *slog.Logger  // slog.Default() when nil
}

// Wait blocks until the probe succeeds, the attempt ceiling is exceeded
// (ErrTimeout), or ctx is cancelled.
func (g Gate) Wait(ctx context.Context) error {
	log := g.Logger
	if log == nil {
		log = slog.Default()
	}
	interval := g.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	target := g.Prober.Describe()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := g.Prober.Check(ctx)
		if err == nil {
			log.Info("database ready", "target", target, "attempts", attempt)
			return nil
		}
		log.Info("waiting for database", "target", target, "attempt", attempt, "error", err)
		if g.MaxAttempts > 0 && attempt >= g.MaxAttempts {
			return ErrTimeout
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
