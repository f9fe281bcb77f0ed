//go:build !windows

package probe

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// pidForPort resolves the pid listening on a TCP port using lsof.
func pidForPort(port int) (int, error) {
	out, err := exec.Command("lsof", "-ti", fmt.Sprintf(":%d", port)).Output()
	if err != nil {
		// lsof exits nonzero when nothing matches.
		return 0, ErrNoProcessFound
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) == 0 {
		return 0, ErrNoProcessFound
	}

	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("unexpected lsof output %q: %w", fields[0], err)
	}
	return pid, nil
}

// terminatePID sends SIGTERM to a single process.
func terminatePID(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
