//go:build !windows

package job

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr detaches the child from the controlling terminal.
// A new session (setsid) makes the generator survive shell-session exit
// and makes its pid the process-group id, so group signaling works.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
