//go:build !windows

package job

import (
	"fmt"
	"syscall"
	"time"

	"github.com/stretching-coach-ai/metagen/internal/detect"
)

// Stop terminates a launched job by PID: SIGTERM to the process group
// first, then SIGKILL after wait elapses. The launched generator is a
// session leader, so -pid addresses its whole group.
func Stop(pid int, wait time.Duration) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if alive, _ := detect.Alive(pid); !alive {
		return nil
	}
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		// Fall back to signaling the single process.
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}
	if waitGone(pid, wait) {
		return nil
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
	_ = syscall.Kill(pid, syscall.SIGKILL)
	if waitGone(pid, 500*time.Millisecond) {
		return nil
	}
	return fmt.Errorf("pid %d still alive after SIGKILL", pid)
}

func waitGone(pid int, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if alive, _ := detect.Alive(pid); !alive {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	alive, _ := detect.Alive(pid)
	return !alive
}
