//go:build windows

package stage

// shellArgv wraps a script for the platform shell.
func shellArgv(script string) []string {
	return []string{"cmd", "/c", script}
}
