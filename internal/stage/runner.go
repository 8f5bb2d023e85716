package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/bootgate/bootgate/internal/env"
)

// ErrFailed marks a stage command that ran and exited non-zero. Callers can
// use errors.Is to distinguish it from failures to launch the command at all.
var ErrFailed = errors.New("stage command failed")

// Result captures the outcome of one stage invocation.
type Result struct {
	Stage    string
	ExitCode int // -1 when the command never ran or was killed by a signal
	Duration time.Duration
	Err      error
}

// OK reports whether the stage completed with a zero exit.
func (r Result) OK() bool { return r.Err == nil }

// Runner executes a single stage to completion.
type Runner interface {
	Run(ctx context.Context, s Stage) Result
}

// ExecRunner runs stages as external commands, passing the orchestrator's own
// stdout/stderr through so stage output stays visible in the container log.
type ExecRunner struct {
	Env    *env.Env  // base environment merged with per-stage entries
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

func (r ExecRunner) Run(ctx context.Context, s Stage) Result {
	argv := s.Argv()
	if len(argv) == 0 {
		return Result{Stage: s.Name}
	}
	// #nosec G204 -- stage commands come from operator-supplied configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if s.WorkDir != "" {
		cmd.Dir = s.WorkDir
	}
	if r.Env != nil {
		cmd.Env = r.Env.Merge(s.Env)
	} else if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.Stdin = os.Stdin

	start := time.Now()
	err := cmd.Run()
	res := Result{Stage: s.Name, Duration: time.Since(start)}
	if err == nil {
		return res
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		res.ExitCode = ee.ExitCode()
		res.Err = fmt.Errorf("%w: exit status %d", ErrFailed, res.ExitCode)
		return res
	}
	// The command never ran (lookup failure, bad workdir, ...).
	res.ExitCode = -1
	res.Err = err
	return res
}
