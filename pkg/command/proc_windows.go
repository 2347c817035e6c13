//go:build windows

package command

import (
	"os/exec"
	"syscall"
)

// configureProcAttr configures the process attributes for Windows
func configureProcAttr(cmd *exec.Cmd) {
	// On Windows, we can't create process groups the same way as Unix
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func exitCode(cmd *exec.Cmd) int {
	if code := cmd.ProcessState.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
