//go:build windows

package detect

import (
	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Alive reports whether pid refers to a live process.
func Alive(pid int) (bool, string) {
	if pid <= 0 {
		return false, ""
	}
	if ok, err := gopsproc.PidExists(int32(pid)); err == nil && ok {
		return true, "gopsutil"
	}
	return false, ""
}
