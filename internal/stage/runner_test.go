//go:build !windows

package stage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bootgate/bootgate/internal/env"
)

func TestExecRunnerSuccess(t *testing.T) {
	var out bytes.Buffer
	r := ExecRunner{Stdout: &out, Stderr: &out}
	res := r.Run(context.Background(), Stage{Name: "hello", Command: "echo hello"})
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if got := strings.TrimSpace(out.String()); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
	if res.Stage != "hello" {
		t.Errorf("Stage = %q, want %q", res.Stage, "hello")
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	r := ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	res := r.Run(context.Background(), Stage{Name: "fail", Command: "sh -c 'exit 7'"})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", res.ExitCode)
	}
	if !errors.Is(res.Err, ErrFailed) {
		t.Errorf("expected ErrFailed, got %v", res.Err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	res := r.Run(context.Background(), Stage{Name: "missing", Command: "definitely-not-a-real-binary-qq"})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1 for launch failure", res.ExitCode)
	}
	if errors.Is(res.Err, ErrFailed) {
		t.Errorf("launch failure must not be ErrFailed: %v", res.Err)
	}
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	r := ExecRunner{}
	res := r.Run(context.Background(), Stage{Name: "noop"})
	if !res.OK() {
		t.Fatalf("empty command should be a no-op, got %v", res.Err)
	}
}

func TestExecRunnerStageEnv(t *testing.T) {
	e := env.New()
	e.Set("GREETING", "base")
	var out bytes.Buffer
	r := ExecRunner{Env: e, Stdout: &out, Stderr: &out}
	res := r.Run(context.Background(), Stage{
		Name:    "env",
		Command: "sh -c 'echo $GREETING'",
		Env:     []string{"GREETING=stage"},
	})
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if got := strings.TrimSpace(out.String()); got != "stage" {
		t.Errorf("per-stage env should win: got %q, want %q", got, "stage")
	}
}

func TestExecRunnerWorkDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	r := ExecRunner{Stdout: &out, Stderr: &out}
	res := r.Run(context.Background(), Stage{Name: "wd", Command: "pwd", WorkDir: dir})
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if got := strings.TrimSpace(out.String()); !strings.HasSuffix(got, dir) {
		t.Errorf("pwd = %q, want suffix %q", got, dir)
	}
}
