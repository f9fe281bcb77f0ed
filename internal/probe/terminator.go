package probe

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoProcessFound indicates a port is bound but no owning process id
// could be resolved for it.
var ErrNoProcessFound = errors.New("no process found for port")

// stopSettle is how long StopByPort waits after signaling before
// returning, giving the OS time to release the port.
const stopSettle = 1 * time.Second

// StopByPort finds the process listening on a port and sends it a
// termination signal.
//
// If the port is not bound at all, the first return value is false with a
// nil error ("nothing to stop" is not a failure). If the port is bound but
// the owning pid cannot be resolved, or the signal cannot be delivered,
// an error is returned so the caller can report it rather than silently
// leaving the process running.
//
// Parameters:
//   - port: The TCP port whose owner should be stopped.
//
// Returns:
//   - bool: True if a process was found and signaled.
//   - int: The pid that was signaled (0 when none).
//   - error: Non-nil for probe, discovery, or signal failures.
func StopByPort(port int) (bool, int, error) {
	bound, err := IsBound(port)
	if err != nil {
		return false, 0, err
	}
	if !bound {
		return false, 0, nil
	}

	pid, err := pidForPort(port)
	if err != nil {
		return false, 0, fmt.Errorf("port %d is bound but the owner could not be resolved: %w", port, err)
	}

	if err := terminatePID(pid); err != nil {
		return false, pid, fmt.Errorf("failed to signal pid %d on port %d: %w", pid, port, err)
	}

	// Give the process a moment to exit and release the port.
	time.Sleep(stopSettle)
	return true, pid, nil
}
