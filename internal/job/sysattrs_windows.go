//go:build windows

package job

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr detaches the child on Windows: a new process group
// plus DETACHED_PROCESS decouples it from the launching console.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // DETACHED_PROCESS
	}
}
