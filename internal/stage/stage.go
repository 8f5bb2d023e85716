package stage

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what a non-zero exit from a stage command means for
// the rest of the startup sequence.
type FailurePolicy string

const (
	// PolicyFatal aborts the whole sequence; the supervised process is never started.
	PolicyFatal FailurePolicy = "fatal"
	// PolicyWarn logs the failure (including the captured exit code) and continues.
	PolicyWarn FailurePolicy = "warn"
)

// ParsePolicy maps a config string to a FailurePolicy. Empty defaults to fatal.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyFatal):
		return PolicyFatal, nil
	case string(PolicyWarn), "warn-and-continue":
		return PolicyWarn, nil
	default:
		return "", fmt.Errorf("invalid failure policy %q, must be one of: fatal, warn", s)
	}
}

// Stage describes one ordered unit of the startup sequence.
// Stages are statically ordered by the sequencer; a Stage carries no
// knowledge of its position.
type Stage struct {
	Name    string        `json:"name" mapstructure:"name"`
	Command string        `json:"command" mapstructure:"command"` // command to run (shell-aware)
	WorkDir string        `json:"work_dir" mapstructure:"workdir"`
	Env     []string      `json:"env" mapstructure:"env"` // extra K=V entries on top of the merged base
	Policy  FailurePolicy `json:"policy" mapstructure:"policy"`
	// Condition, when non-nil, gates execution. A false condition skips the
	// stage and counts as success.
	Condition func() bool `json:"-" mapstructure:"-"`
}

// Validate checks the statically-configurable fields.
func (s *Stage) Validate() error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return fmt.Errorf("stage name is required")
	}
	if strings.ContainsAny(name, " \t\n\r/\\<>:\"|?*") {
		return fmt.Errorf("stage %q: name contains invalid characters", name)
	}
	if _, err := ParsePolicy(string(s.Policy)); err != nil {
		return fmt.Errorf("stage %q: %w", name, err)
	}
	return nil
}

// Argv builds the argument vector for the stage command. It avoids invoking
// a shell when not necessary, and it respects an explicit shell invocation
// already present in the command string (e.g., "sh -c 'echo hi'"), avoiding
// double-wrapping with another shell.
func (s *Stage) Argv() []string {
	cmdStr := strings.TrimSpace(s.Command)
	if cmdStr == "" {
		return nil
	}
	if afterC, ok := parseExplicitShell(cmdStr); ok {
		return shellArgv(afterC)
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		return shellArgv(cmdStr)
	}
	return strings.Fields(cmdStr)
}

// parseExplicitShell detects patterns like "sh -c <ARG>" or "/bin/sh -c <ARG>"
// at the beginning of cmdStr and returns the substring after "-c" with one
// surrounding quote pair stripped, so the actual script reaches the shell.
func parseExplicitShell(cmdStr string) (string, bool) {
	trim := strings.TrimLeft(cmdStr, " \t")
	candidates := []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "}
	for _, p := range candidates {
		if strings.HasPrefix(trim, p) {
			after := trim[len(p):]
			if n := len(after); n >= 2 {
				if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
					after = after[1 : n-1]
				}
			}
			return after, true
		}
	}
	return "", false
}
