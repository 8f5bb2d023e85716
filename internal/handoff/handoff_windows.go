//go:build windows

package handoff

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
)

// Windows has no execve; the closest emulation is supervising a child with
// inherited streams, forwarding interrupts, and exiting with its code.
func execImage(argv []string, env []string) error {
	// #nosec G204 -- the handoff target is the operator-supplied argv
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("handoff: start %s: %w", argv[0], err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		for s := range sigc {
			_ = cmd.Process.Signal(s)
		}
	}()
	err := cmd.Wait()
	signal.Stop(sigc)
	close(sigc)
	if err == nil {
		os.Exit(0)
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		os.Exit(ee.ExitCode())
	}
	return fmt.Errorf("handoff: wait %s: %w", argv[0], err)
}
