//go:build !windows

package detect

import (
	"bytes"
	"os"
	"runtime"
	"strconv"
	"syscall"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Alive reports whether pid refers to a live process and how it was
// detected. On Linux a quickly-exited child can linger as a zombie; that
// counts as not alive.
func Alive(pid int) (bool, string) {
	if pid <= 0 {
		return false, ""
	}
	if runtime.GOOS == "linux" {
		if isZombieLinux(pid) {
			return false, ""
		}
		if syscall.Kill(pid, 0) == nil {
			return true, "signal"
		}
		return false, ""
	}
	// Darwin/BSD: kill(2) with signal 0 probes existence; gopsutil backs
	// it up when permissions deny the signal.
	if syscall.Kill(pid, 0) == nil {
		return true, "signal"
	}
	if ok, err := gopsproc.PidExists(int32(pid)); err == nil && ok {
		return true, "gopsutil"
	}
	return false, ""
}

// isZombieLinux returns true if /proc/<pid>/status reports a zombie state (Z).
func isZombieLinux(pid int) bool {
	path := "/proc/" + strconv.Itoa(pid) + "/status"
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Contains(b, []byte("State:\tZ"))
}
