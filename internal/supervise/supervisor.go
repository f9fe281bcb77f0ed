package supervise

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/scamshield/devctl/internal/config"
)

// SessionState is the lifecycle state of a supervision session.
type SessionState string

const (
	// StateIdle means supervision has not started.
	StateIdle SessionState = "idle"

	// StateRunning means processes are launched and being polled.
	StateRunning SessionState = "running"

	// StateShuttingDown means termination is in progress. No new
	// process may be created once this state is entered.
	StateShuttingDown SessionState = "shutting_down"

	// StateStopped means every process has been reaped. Terminal.
	StateStopped SessionState = "stopped"
)

// Cause records why a session ended.
type Cause string

const (
	// CauseInterrupt: the user cancelled the session. This is the only
	// cause that counts as a clean stop.
	CauseInterrupt Cause = "interrupt"

	// CauseProcessExit: a managed process exited on its own, triggering
	// cascade shutdown of its siblings.
	CauseProcessExit Cause = "process-exit"

	// CauseAlreadyRunning: every requested role was already up, so no
	// process was launched at all.
	CauseAlreadyRunning Cause = "already-running"
)

// Result describes how a supervision session ended.
type Result struct {
	// Cause is why the session ended.
	Cause Cause

	// FailedRole is the role that exited first, for CauseProcessExit.
	FailedRole config.Role

	// ExitCode is the failed role's exit code, for CauseProcessExit.
	ExitCode int

	// Skipped lists roles that were already running at launch time and
	// were left alone (joint sessions only).
	Skipped []config.Role
}

// Supervisor owns a set of launched processes, polls their liveness, and
// drives cascade shutdown and signal escalation. One Supervisor runs one
// session; create a new one per Run.
type Supervisor struct {
	// PollInterval is the liveness poll tick. Sub-second keeps an
	// interrupt or a crashed child observable within one tick.
	PollInterval time.Duration

	// SettleDelay is how long to wait after spawning before the first
	// liveness tick, giving the children time to bind their ports.
	SettleDelay time.Duration

	// GracePeriod is how long terminated processes get to exit before
	// being killed.
	GracePeriod time.Duration

	// KillWait is the final reap-confirmation wait after a forced kill.
	KillWait time.Duration

	// Sink receives every multiplexed output line.
	Sink OutputSink

	// Logger receives supervision diagnostics.
	Logger *log.Logger

	cfg config.Config
	id  string

	mu    sync.Mutex
	state SessionState
	procs []*ManagedProcess
}

// New creates a Supervisor with default timings over an immutable role
// configuration.
func New(cfg config.Config) *Supervisor {
	return &Supervisor{
		PollInterval: 1 * time.Second,
		SettleDelay:  2 * time.Second,
		GracePeriod:  3 * time.Second,
		KillWait:     500 * time.Millisecond,
		Sink:         func(OutputLine) {},
		Logger:       log.Default(),
		cfg:          cfg,
		id:           uuid.NewString(),
		state:        StateIdle,
	}
}

// State returns the current session state.
func (s *Supervisor) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Processes returns the processes launched in this session.
func (s *Supervisor) Processes() []*ManagedProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ManagedProcess(nil), s.procs...)
}

// Run launches the requested roles and supervises them until the session
// ends. It blocks for the session's lifetime.
//
// In a joint session (joint=true) a role whose port is already bound is
// skipped with a warning rather than refused, and the cross-role
// exclusivity check does not apply. An individual launch (joint=false)
// is refused outright on either condition.
//
// Every path out of this method passes through shutdown escalation and
// leaves the session in StateStopped.
//
// Parameters:
//   - ctx: Cancelled on user interrupt; observed within one poll tick.
//   - roles: The roles to launch, in launch order.
//   - joint: Whether this is a joint session.
//
// Returns:
//   - Result: How the session ended.
//   - error: Non-nil if launching failed; the session is already cleaned
//     up when an error is returned.
func (s *Supervisor) Run(ctx context.Context, roles []config.Role, joint bool) (Result, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("supervisor has already run (state %s)", s.state)
	}
	s.mu.Unlock()

	s.Logger.Debug("starting supervision session", "session", s.id, "roles", roles, "joint", joint)

	var skipped []config.Role
	var muxWG sync.WaitGroup

	for _, role := range roles {
		p, err := Launch(s.cfg, role, joint)
		if err != nil {
			if joint && errors.Is(err, ErrAlreadyRunning) {
				s.Logger.Warn("already running, skipping launch",
					"role", role, "port", s.cfg.Role(role).Port)
				skipped = append(skipped, role)
				continue
			}
			// A refused or failed launch aborts the whole session:
			// cascade-stop anything already launched.
			s.shutdown()
			s.drainAndStop(&muxWG)
			return Result{}, err
		}

		s.mu.Lock()
		s.procs = append(s.procs, p)
		s.mu.Unlock()

		mux := NewMultiplexer(p, s.Sink)
		muxWG.Add(1)
		go func() {
			defer muxWG.Done()
			mux.Run()
		}()

		s.Logger.Info("started", "role", p.Role, "pid", p.Pid(), "url", s.cfg.Role(role).URL())
	}

	if len(s.procs) == 0 {
		s.setState(StateStopped)
		return Result{Cause: CauseAlreadyRunning, Skipped: skipped}, nil
	}

	s.setState(StateRunning)

	result := s.poll(ctx)
	result.Skipped = skipped

	s.shutdown()
	s.drainAndStop(&muxWG)

	s.Logger.Debug("supervision session ended", "session", s.id, "cause", result.Cause)
	return result, nil
}

// poll runs the liveness loop until a process dies or the context is
// cancelled. Each tick is a non-blocking check of every process.
func (s *Supervisor) poll(ctx context.Context) Result {
	// Give the children a moment to come up before the first tick.
	select {
	case <-ctx.Done():
		return Result{Cause: CauseInterrupt}
	case <-time.After(s.SettleDelay):
	}

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Result{Cause: CauseInterrupt}
		case <-ticker.C:
			s.mu.Lock()
			procs := s.procs
			s.mu.Unlock()

			for _, p := range procs {
				if p.IsAlive() {
					continue
				}
				code, _ := p.ExitCode()
				s.Logger.Error("process exited unexpectedly",
					"role", p.Role, "code", code)
				return Result{Cause: CauseProcessExit, FailedRole: p.Role, ExitCode: code}
			}
		}
	}
}

// shutdown drives the escalation sequence: terminate every live process,
// wait out a shared grace period, then kill survivors. Idempotent: a
// second trigger while already shutting down is a no-op.
func (s *Supervisor) shutdown() {
	s.mu.Lock()
	if s.state == StateShuttingDown || s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateShuttingDown
	procs := s.procs
	s.mu.Unlock()

	// Signal everything first so siblings are not penalized by serial
	// waits, then wait against one shared deadline.
	for _, p := range procs {
		if !p.IsAlive() {
			continue
		}
		s.Logger.Debug("sending terminate", "role", p.Role, "pid", p.Pid())
		if err := p.Terminate(); err != nil {
			s.Logger.Warn("failed to terminate", "role", p.Role, "error", err)
		}
	}

	deadline := time.Now().Add(s.GracePeriod)
	for _, p := range procs {
		p.WaitUntil(deadline)
	}

	for _, p := range procs {
		if !p.IsAlive() {
			continue
		}
		s.Logger.Warn("did not exit after terminate, killing", "role", p.Role, "pid", p.Pid())
		if err := p.Kill(); err != nil {
			s.Logger.Warn("failed to kill", "role", p.Role, "error", err)
		}
	}

	killDeadline := time.Now().Add(s.KillWait)
	for _, p := range procs {
		p.WaitUntil(killDeadline)
	}
}

// drainAndStop waits briefly for the output multiplexers to finish, then
// marks the session stopped. The wait is bounded: once the process group
// is dead the pipes close promptly, but a leaked grandchild must not
// hang the session forever.
func (s *Supervisor) drainAndStop(muxWG *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		muxWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Logger.Debug("output drain timed out")
	}
	s.setState(StateStopped)
}

func (s *Supervisor) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
