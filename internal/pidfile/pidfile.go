// Package pidfile reads and writes the shared last-PID file. The file is
// last-write-wins with no locking: it holds the PID of whichever launch
// wrote last. Per-job records live next to it for anything that needs
// more than "the last one".
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteLast overwrites path with the decimal pid and a trailing newline.
func WriteLast(path string, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// ReadLast reads the pid from the first line of path. Content after the
// first line is ignored, so files carrying extra metadata still parse.
func ReadLast(path string) (int, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(string(b), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("pid file %s holds non-positive pid %d", path, pid)
	}
	return pid, nil
}
