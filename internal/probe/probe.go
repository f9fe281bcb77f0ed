// Package probe provides TCP port liveness probing and port-based process
// termination.
//
// A role is considered "up" when its port is bound, not when a process
// handle exists. Probing works by attempting a transient bind on
// localhost: bind success means the port is free, address-in-use means
// something is listening.
package probe

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

// IsBound reports whether a TCP port is currently bound on localhost.
//
// The probe binds and immediately releases a listening socket, so it has
// no lasting side effect. "Address in use" is the normal bound signal and
// is not an error; anything else (e.g. permission denied on a privileged
// port) is surfaced as an error rather than misreported as "free".
//
// Parameters:
//   - port: The TCP port to check.
//
// Returns:
//   - bool: True if the port is bound.
//   - error: Non-nil for unexpected OS-level probe failures.
func IsBound(port int) (bool, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err == nil {
		ln.Close()
		return false, nil
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true, nil
	}
	return false, fmt.Errorf("port probe failed on %d: %w", port, err)
}
