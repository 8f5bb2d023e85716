//go:build !windows

package stage

// shellArgv wraps a script for the platform shell. The absolute path avoids
// a PATH dependency when the stage environment is overridden.
func shellArgv(script string) []string {
	return []string{"/bin/sh", "-c", script}
}
