//go:build !windows

package supervise

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scamshield/devctl/internal/config"
)

// testSupervisor builds a supervisor with fast timings and quiet logs.
func testSupervisor(cfg config.Config) *Supervisor {
	sup := New(cfg)
	sup.PollInterval = 50 * time.Millisecond
	sup.SettleDelay = 10 * time.Millisecond
	sup.GracePeriod = 2 * time.Second
	sup.KillWait = 500 * time.Millisecond
	sup.Logger = log.New(io.Discard)
	return sup
}

func TestSupervisor_CascadeOnUnexpectedExit(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "sleep 1; exit 7")
	sup := testSupervisor(cfg)

	result, err := sup.Run(context.Background(),
		[]config.Role{config.RoleBackend, config.RoleFrontend}, true)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if result.Cause != CauseProcessExit {
		t.Fatalf("cause = %q, want %q", result.Cause, CauseProcessExit)
	}
	if result.FailedRole != config.RoleBackend {
		t.Fatalf("failed role = %q, want backend", result.FailedRole)
	}
	if result.ExitCode != 7 {
		t.Fatalf("exit code = %d, want 7", result.ExitCode)
	}

	// The sibling must have been terminated by the cascade.
	for _, p := range sup.Processes() {
		if p.IsAlive() {
			stopProcess(t, p)
			t.Fatalf("%s still alive after cascade shutdown", p.Role)
		}
	}
	if sup.State() != StateStopped {
		t.Fatalf("state = %q, want stopped", sup.State())
	}
}

func TestSupervisor_InterruptStopsBoth(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "sleep 30")
	sup := testSupervisor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	result, err := sup.Run(ctx,
		[]config.Role{config.RoleBackend, config.RoleFrontend}, true)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if result.Cause != CauseInterrupt {
		t.Fatalf("cause = %q, want %q", result.Cause, CauseInterrupt)
	}
	if len(sup.Processes()) != 2 {
		t.Fatalf("launched %d processes, want 2", len(sup.Processes()))
	}
	for _, p := range sup.Processes() {
		if p.IsAlive() {
			stopProcess(t, p)
			t.Fatalf("%s still alive after interrupt shutdown", p.Role)
		}
	}
	if sup.State() != StateStopped {
		t.Fatalf("state = %q, want stopped", sup.State())
	}
}

func TestSupervisor_EscalatesToKill(t *testing.T) {
	// A child that traps SIGTERM must be force-killed once the grace
	// period elapses.
	// The shell ignores TERM and respawns its sleep, so the group only
	// goes away on KILL.
	cfg := testConfig(t, "sleep 30", `trap "" TERM; while :; do sleep 0.1; done`)
	sup := testSupervisor(cfg)
	sup.GracePeriod = 300 * time.Millisecond
	sup.KillWait = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	result, err := sup.Run(ctx, []config.Role{config.RoleBackend}, true)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if result.Cause != CauseInterrupt {
		t.Fatalf("cause = %q, want %q", result.Cause, CauseInterrupt)
	}
	for _, p := range sup.Processes() {
		if p.IsAlive() {
			stopProcess(t, p)
			t.Fatalf("%s survived the kill escalation", p.Role)
		}
	}
}

func TestSupervisor_JointSkipsBoundRole(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "sleep 30")
	holdPort(t, cfg.Backend.Port)
	sup := testSupervisor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	result, err := sup.Run(ctx,
		[]config.Role{config.RoleBackend, config.RoleFrontend}, true)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (bound role should be skipped in joint mode)", err)
	}

	if len(result.Skipped) != 1 || result.Skipped[0] != config.RoleBackend {
		t.Fatalf("skipped = %v, want [backend]", result.Skipped)
	}
	procs := sup.Processes()
	if len(procs) != 1 || procs[0].Role != config.RoleFrontend {
		t.Fatalf("launched %v, want only frontend", procs)
	}
	stopProcess(t, procs[0])
}

func TestSupervisor_AllRolesAlreadyRunning(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "sleep 30")
	holdPort(t, cfg.Frontend.Port)
	holdPort(t, cfg.Backend.Port)
	sup := testSupervisor(cfg)

	result, err := sup.Run(context.Background(),
		[]config.Role{config.RoleBackend, config.RoleFrontend}, true)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if result.Cause != CauseAlreadyRunning {
		t.Fatalf("cause = %q, want %q", result.Cause, CauseAlreadyRunning)
	}
	if len(sup.Processes()) != 0 {
		t.Fatalf("launched %d processes, want 0", len(sup.Processes()))
	}
	if sup.State() != StateStopped {
		t.Fatalf("state = %q, want stopped", sup.State())
	}
}

func TestSupervisor_IndividualLaunchRefused(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "sleep 30")
	holdPort(t, cfg.Backend.Port)
	sup := testSupervisor(cfg)

	_, err := sup.Run(context.Background(), []config.Role{config.RoleBackend}, false)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Run() error = %v, want ErrAlreadyRunning", err)
	}
	if sup.State() != StateStopped {
		t.Fatalf("state = %q, want stopped after refused launch", sup.State())
	}
}

func TestSupervisor_SingleRoleExitCode(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "exit 5")
	sup := testSupervisor(cfg)

	result, err := sup.Run(context.Background(), []config.Role{config.RoleBackend}, false)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if result.Cause != CauseProcessExit {
		t.Fatalf("cause = %q, want %q", result.Cause, CauseProcessExit)
	}
	if result.ExitCode != 5 {
		t.Fatalf("exit code = %d, want 5", result.ExitCode)
	}
}

func TestSupervisor_RunTwiceFails(t *testing.T) {
	cfg := testConfig(t, "sleep 30", "exit 0")
	sup := testSupervisor(cfg)

	if _, err := sup.Run(context.Background(), []config.Role{config.RoleBackend}, false); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := sup.Run(context.Background(), []config.Role{config.RoleBackend}, false); err == nil {
		t.Fatal("second Run() error = nil, want non-nil")
	}
}

func TestSupervisor_OutputDeliveredToSink(t *testing.T) {
	cfg := testConfig(t, "sleep 30", `echo ready; sleep 30`)
	sup := testSupervisor(cfg)

	lineCh := make(chan OutputLine, 16)
	sup.Sink = func(line OutputLine) {
		select {
		case lineCh <- line:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_, _ = sup.Run(ctx, []config.Role{config.RoleBackend}, true)
		close(done)
	}()

	select {
	case line := <-lineCh:
		if line.Role != config.RoleBackend || line.Stream != StreamStdout || line.Text != "ready" {
			t.Errorf("line = %+v, want backend stdout %q", line, "ready")
		}
	case <-time.After(5 * time.Second):
		t.Error("no output line delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}
