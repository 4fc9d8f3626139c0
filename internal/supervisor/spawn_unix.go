//go:build linux || darwin

package supervisor

import (
	"os/exec"
	"syscall"
)

// detachedCommand builds a shell command that runs in its own session so it
// survives the supervisor exiting. Output is discarded.
func detachedCommand(command string) *exec.Cmd {
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}
