//go:build windows

package job

import (
	"fmt"
	"os"
	"time"

	"github.com/stretching-coach-ai/metagen/internal/detect"
)

// Stop terminates a launched job by PID. Windows has no graceful TERM for
// detached console-less children, so the handle is killed directly after
// the wait grace period.
func Stop(pid int, wait time.Duration) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if alive, _ := detect.Alive(pid); !alive {
		return nil
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	_ = p.Kill()
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if alive, _ := detect.Alive(pid); !alive {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	if alive, _ := detect.Alive(pid); alive {
		return fmt.Errorf("pid %d still alive after kill", pid)
	}
	return nil
}
