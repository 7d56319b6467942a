//go:build windows

package detect

import (
	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// StartTimeUnix returns the process start time as Unix seconds.
// Returns 0 when unavailable or on error.
func StartTimeUnix(pid int) int64 {
	if pid <= 0 {
		return 0
	}
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return 0
	}
	ms, err := p.CreateTime()
	if err != nil || ms <= 0 {
		return 0
	}
	return ms / 1000
}
