//go:build !windows

package handoff

import (
	"fmt"
	"os/exec"
	"syscall"
)

func execImage(argv []string, env []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("handoff: %w", err)
	}
	// Replaces the process image; inherited streams and signal disposition
	// carry over. Only reached on failure.
	if err := syscall.Exec(path, argv, env); err != nil {
		return fmt.Errorf("handoff: exec %s: %w", path, err)
	}
	return nil
}
