// Package handoff performs the terminal transfer of process control to the
// supervised application: the orchestrator's process image is replaced, so
// signal delivery and exit status belong to the application from then on.
package handoff

import "fmt"

// Exec replaces the current process with argv, passing env through.
// On success it never returns. Any returned error means the command could
// not be launched; the caller must treat it as fatal.
func Exec(argv []string, env []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("handoff: empty command")
	}
	return execImage(argv, env)
}
