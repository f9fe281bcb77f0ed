// Package supervise manages the lifecycle of the frontend and backend dev
// server processes: launching them with captured output, multiplexing
// their stdout/stderr, polling liveness, and escalating shutdown from
// graceful terminate to forced kill.
package supervise

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/scamshield/devctl/internal/config"
	"github.com/scamshield/devctl/internal/probe"
)

// ManagedProcess is one launched child process, owned by the Supervisor
// (or, for single-role foreground mode, by the command layer).
type ManagedProcess struct {
	// Role is the logical identity of this process.
	Role config.Role

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	// done is closed once the process has been reaped.
	done chan struct{}

	mu       sync.Mutex
	exited   bool
	exitCode int
}

// Launch starts the command for a role after verifying its port is free.
//
// Refusal conditions:
//   - The role's own port is bound: ErrAlreadyRunning.
//   - joint is false and the sibling role's port is bound: ErrRoleConflict.
//     Joint sessions launch both roles together and skip this check.
//
// The child runs in its own process group so the whole tree (npm plus the
// actual server it spawns) can be signaled together, and so a terminal
// interrupt reaches the supervisor rather than the children directly.
//
// Parameters:
//   - cfg: The role configuration set.
//   - role: Which role to launch.
//   - joint: True when launching as part of a joint session.
//
// Returns:
//   - *ManagedProcess: The launched process handle.
//   - error: One of the refusal sentinels, a probe error, or a wrapped
//     ErrLaunchFailure if the command could not be spawned.
func Launch(cfg config.Config, role config.Role, joint bool) (*ManagedProcess, error) {
	rc := cfg.Role(role)

	bound, err := probe.IsBound(rc.Port)
	if err != nil {
		return nil, err
	}
	if bound {
		return nil, fmt.Errorf("%s port %d: %w", role, rc.Port, ErrAlreadyRunning)
	}

	if !joint {
		other := cfg.Other(role)
		otherBound, err := probe.IsBound(other.Port)
		if err != nil {
			return nil, err
		}
		if otherBound {
			return nil, fmt.Errorf("cannot start %s while %s is running on port %d: %w",
				role, other.Role, other.Port, ErrRoleConflict)
		}
	}

	return spawn(role, rc)
}

// spawn starts the role's command with both output streams piped.
func spawn(role config.Role, rc config.RoleConfig) (*ManagedProcess, error) {
	if len(rc.Command) == 0 {
		return nil, fmt.Errorf("%s has no launch command: %w", role, ErrLaunchFailure)
	}

	cmd := exec.Command(rc.Command[0], rc.Command[1:]...)
	cmd.Dir = rc.Dir
	cmd.Env = os.Environ()
	setProcGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s stdout: %w", role, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s stderr: %w", role, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s (%v): %v: %w", role, rc.Command, err, ErrLaunchFailure)
	}

	p := &ManagedProcess{
		Role:   role,
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		done:   make(chan struct{}),
	}
	go p.reap()
	return p, nil
}

// reap waits for the process and records its exit code.
func (p *ManagedProcess) reap() {
	_ = p.cmd.Wait()

	p.mu.Lock()
	p.exited = true
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	} else {
		p.exitCode = -1
	}
	p.mu.Unlock()
	close(p.done)
}

// Pid returns the OS process id.
func (p *ManagedProcess) Pid() int {
	return p.cmd.Process.Pid
}

// IsAlive reports whether the process has not yet been reaped.
// Non-blocking.
func (p *ManagedProcess) IsAlive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// ExitCode returns the recorded exit code. The second return value is
// false until the process has exited.
func (p *ManagedProcess) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.exited
}

// Terminate sends a graceful termination signal to the process group.
func (p *ManagedProcess) Terminate() error {
	return terminateGroup(p.cmd.Process.Pid)
}

// Kill forcefully kills the process group.
func (p *ManagedProcess) Kill() error {
	return killGroup(p.cmd.Process.Pid)
}

// Wait blocks until the process exits or the timeout elapses.
//
// Returns:
//   - bool: True if the process exited within the timeout.
func (p *ManagedProcess) Wait(timeout time.Duration) bool {
	select {
	case <-p.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// WaitUntil blocks until the process exits or the deadline passes.
// Waiting several processes against one shared deadline keeps the
// shutdown grace period uniform instead of accumulating per process.
func (p *ManagedProcess) WaitUntil(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return !p.IsAlive()
	}
	return p.Wait(remaining)
}
