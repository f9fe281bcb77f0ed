package main

import (
	"github.com/spf13/cobra"

	"github.com/scamshield/devctl/internal/config"
	"github.com/scamshield/devctl/internal/probe"
	"github.com/scamshield/devctl/internal/ui"
)

// stopCmd stops a running server by finding the process bound to its port.
var stopCmd = &cobra.Command{
	Use:   "stop <frontend|backend>",
	Short: "Stop a running server",
	Long: `Stop a running server by port.

Finds the process currently listening on the server's port and sends it
a termination signal. Works for servers started by any invocation, not
just this one.

EXAMPLES:
  devctl stop frontend
  devctl stop backend`,
	Args: cobra.ExactArgs(1),
	RunE: runStop,
}

// runStop terminates the process bound to a role's port.
//
// Parameters:
//   - cmd: The cobra command.
//   - args: args[0] is the role name.
//
// Returns:
//   - error: Non-nil if a bound process could not be found or signaled.
func runStop(cmd *cobra.Command, args []string) error {
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
	stopped, pid, err := probe.StopByPort(rc.Port)
	if err != nil {
		ui.PrintError("Failed to stop %s: %v", role, err)
		ui.PrintDim("You may need to stop it manually")
		return err
	}
	if !stopped {
		ui.PrintInfo("%s is not running on port %d", role, rc.Port)
		return nil
	}

	ui.PrintSuccess("Stopped %s server (pid %d)", role, pid)
	return nil
}
