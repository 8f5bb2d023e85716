// Package sequencer drives the startup pipeline: readiness gate, ordered
// bootstrap stages with static failure policies, then handoff to the
// supervised process.
package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bootgate/bootgate/internal/config"
	"github.com/bootgate/bootgate/internal/env"
	"github.com/bootgate/bootgate/internal/gate"
	"github.com/bootgate/bootgate/internal/handoff"
	"github.com/bootgate/bootgate/internal/probe"
	"github.com/bootgate/bootgate/internal/stage"
)

type Sequencer struct {
	cfg    *config.Config
	log    *slog.Logger
	gate   gate.Gate
	runner stage.Runner
	execFn func(argv, env []string) error
	env    *env.Env
}

func New(cfg *config.Config, log *slog.Logger) (*Sequencer, error) {
	prober, err := probe.New(cfg.DB.ProbeSettings())
	if err != nil {
		return nil, err
	}
	e := env.New()
	for _, kv := range cfg.Env {
		if i := strings.IndexByte(kv, '='); i > 0 {
			e.Set(kv[:i], kv[i+1:])
		}
	}
	return &Sequencer{
		cfg: cfg,
		log: log,
		gate: gate.Gate{
			Prober:      prober,
			Interval:    cfg.Gate.Interval,
			MaxAttempts: cfg.Gate.MaxAttempts,
			Logger:      log,
		},
		runner: stage.ExecRunner{Env: e},
		execFn: handoff.Exec,
		env:    e,
	}, nil
}

// Run executes the full sequence. argv is the supervised command; when empty
// the sequencer stops after the stages (bootstrap-only mode). On successful
// handoff Run never returns.
func (s *Sequencer) Run(ctx context.Context, argv []string) error {
	if err := s.gate.Wait(ctx); err != nil {
		return fmt.Errorf("readiness gate: %w", err)
	}
	for _, st := range s.stages() {
		if strings.TrimSpace(st.Command) == "" {
			s.log.Debug("stage not configured, skipping", "stage", st.Name)
			continue
		}
		if st.Condition != nil && !st.Condition() {
			s.log.Info("stage condition not met, skipping", "stage", st.Name)
			continue
		}
		s.log.Info("stage starting", "stage", st.Name)
		res := s.runner.Run(ctx, st)
		if res.OK() {
			s.log.Info("stage done", "stage", st.Name, "duration", res.Duration)
			continue
		}
		if st.Policy == stage.PolicyWarn {
			// Exit code is surfaced for operator diagnosis; a warn stage
			// failure is indistinguishable from "already done" and counts
			// as success for sequencing.
			s.log.Warn("stage failed, continuing", "stage", st.Name, "exit_code", res.ExitCode, "error", res.Err)
			continue
		}
		s.log.Error("stage failed", "stage", st.Name, "exit_code", res.ExitCode, "error", res.Err)
		return fmt.Errorf("stage %s: %w", st.Name, res.Err)
	}
	if len(argv) == 0 {
		s.log.Info("bootstrap complete, no command to hand off")
		return nil
	}
	s.log.Info("handing off", "command", strings.Join(argv, " "))
	if err := s.execFn(argv, s.env.Merge(nil)); err != nil {
		s.log.Error("handoff failed", "command", argv[0], "error", err)
		return err
	}
	return nil
}

// stages assembles the built-in pipeline in its fixed order, followed by any
// operator-defined extra stages. Policies are decided here, centrally, never
// inside a stage command.
func (s *Sequencer) stages() []stage.Stage {
	cfg := s.cfg
	built := []stage.Stage{
		{
			Name:      "reset-db",
			Command:   cfg.Commands.Reset,
			Policy:    stage.PolicyWarn,
			Condition: func() bool { return cfg.ResetDB },
		},
		{
			Name:    "migrate",
			Command: cfg.Commands.Migrate,
			Policy:  stage.PolicyFatal,
		},
		{
			Name:    "ensure-admin",
			Command: cfg.Commands.EnsureAdmin,
			Policy:  stage.PolicyFatal,
			Env:     adminEnv(cfg.Admin),
		},
		{
			Name:    "seed-data",
			Command: cfg.Commands.Seed,
			Policy:  stage.PolicyWarn,
		},
		{
			Name:    "collect-assets",
			Command: cfg.Commands.CollectAssets,
			Policy:  stage.PolicyWarn,
		},
	}
	return append(built, cfg.Stages...)
}

// adminEnv hands the account parameters to the provisioning command through
// its environment rather than argv, keeping the password out of process
// listings.
func adminEnv(a config.Admin) []string {
	var kvs []string
	if a.Username != "" {
		kvs = append(kvs, "ADMIN_USERNAME="+a.Username)
	}
	if a.Email != "" {
		kvs = append(kvs, "ADMIN_EMAIL="+a.Email)
	}
	if a.Password != "" {
		kvs = append(kvs, "ADMIN_PASSWORD="+a.Password)
	}
	return kvs
}
