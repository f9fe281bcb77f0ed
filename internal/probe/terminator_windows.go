//go:build windows

package probe

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// pidForPort resolves the pid listening on a TCP port by scanning
// netstat output for a LISTENING entry on that port.
func pidForPort(port int) (int, error) {
	out, err := exec.Command("netstat", "-ano").Output()
	if err != nil {
		return 0, fmt.Errorf("netstat failed: %w", err)
	}

	suffix := fmt.Sprintf(":%d", port)
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "LISTENING") {
			continue
		}
		fields := strings.Fields(line)
		// Proto LocalAddress ForeignAddress State PID
		if len(fields) < 5 || !strings.HasSuffix(fields[1], suffix) {
			continue
		}
		pid, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			continue
		}
		return pid, nil
	}
	return 0, ErrNoProcessFound
}

// terminatePID terminates a single process on Windows.
func terminatePID(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
