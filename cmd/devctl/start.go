package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/scamshield/devctl/internal/config"
	"github.com/scamshield/devctl/internal/supervise"
	"github.com/scamshield/devctl/internal/ui"
)

// startCmd launches a single server in the foreground.
var startCmd = &cobra.Command{
	Use:   "start <frontend|backend>",
	Short: "Start one server in the foreground",
	Long: `Start a single server and block until it exits.

The server is refused if its port is already bound, or if the other
server is running (start both together with plain 'devctl' instead).

EXAMPLES:
  devctl start frontend    # Vite on port 5173
  devctl start backend     # Express on port 5000`,
	Args: cobra.ExactArgs(1),
	RunE: runStartOne,
}

// runStartBoth starts both servers as a joint supervised session.
// Invoked when devctl runs without arguments.
//
// Parameters:
//   - cmd: The cobra command.
//   - args: Command arguments (unused).
//
// Returns:
//   - error: Non-nil if launch failed or a server died first.
func runStartBoth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("Failed to load config: %v", err)
		return err
	}

	ui.PrintInfo("Starting both frontend and backend servers...")
	ui.PrintDim("  Frontend: %s", cfg.Frontend.URL())
	ui.PrintDim("  Backend:  %s", cfg.Backend.URL())
	ui.PrintWarning("Press Ctrl+C to stop both servers")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervise.New(cfg)
	sup.Sink = newOutputSink()

	roles := []config.Role{config.RoleBackend, config.RoleFrontend}
	result, err := sup.Run(ctx, roles, true)
	if err != nil {
		ui.PrintError("Failed to start servers: %v", err)
		return err
	}

	switch result.Cause {
	case supervise.CauseAlreadyRunning:
		ui.PrintInfo("Both servers are already running")
		return nil
	case supervise.CauseProcessExit:
		ui.PrintError("%s exited with code %d, stopped the other server", result.FailedRole, result.ExitCode)
		return fmt.Errorf("%s died", result.FailedRole)
	default:
		ui.PrintSuccess("Stopped both servers")
		return nil
	}
}

// runStartOne starts a single role and blocks for its lifetime.
//
// Parameters:
//   - cmd: The cobra command.
//   - args: args[0] is the role name.
//
// Returns:
//   - error: Non-nil if the launch was refused or the server exited
//     nonzero.
func runStartOne(cmd *cobra.Command, args []string) error {
	role, err := config.ParseRole(args[0])
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("Failed to load config: %v", err)
		return err
	}

	rc := cfg.Role(role)
	ui.PrintInfo("Starting %s server...", role)
	ui.PrintDim("  %s will be available at %s", role, rc.URL())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervise.New(cfg)
	sup.Sink = newOutputSink()

	result, err := sup.Run(ctx, []config.Role{role}, false)
	if err != nil {
		ui.PrintError("Failed to start %s: %v", role, err)
		return err
	}

	switch result.Cause {
	case supervise.CauseProcessExit:
		// Foreground mode mirrors the server's own exit status.
		if result.ExitCode == 0 {
			ui.PrintInfo("%s exited", role)
			return nil
		}
		ui.PrintError("%s exited with code %d", role, result.ExitCode)
		return fmt.Errorf("%s exited with code %d", role, result.ExitCode)
	default:
		ui.PrintSuccess("Stopped %s server", role)
		return nil
	}
}

// newOutputSink returns a sink that writes multiplexed server output
// with a padded, colored role prefix. Color is disabled when stdout is
// not a terminal so piped output stays clean.
func newOutputSink() supervise.OutputSink {
	colorize := isatty.IsTerminal(os.Stdout.Fd())

	return func(line supervise.OutputLine) {
		w := os.Stdout
		if line.Stream == supervise.StreamStderr {
			w = os.Stderr
		}
		fmt.Fprintf(w, "%s | %s\n", rolePrefix(string(line.Role), colorize), line.Text)
	}
}

// rolePrefix pads a role name to a fixed width so output columns line
// up, optionally applying the role's color.
func rolePrefix(role string, colorize bool) string {
	prefix := fmt.Sprintf("%-8s", role)
	if colorize {
		prefix = ui.RoleStyle(role).Render(prefix)
	}
	return prefix
}
