//go:build !windows

package command

import (
	"os/exec"
	"syscall"
)

// configureProcAttr puts the child in a new process group and makes context
// cancellation signal the whole group.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // Create new process group with this process as leader
	}
	cmd.Cancel = func() error {
		// Negative PID targets the process group
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}

// exitCode follows the shell convention of 128+signal for signalled children.
func exitCode(cmd *exec.Cmd) int {
	state := cmd.ProcessState
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}
