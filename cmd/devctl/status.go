package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scamshield/devctl/internal/config"
	"github.com/scamshield/devctl/internal/probe"
	"github.com/scamshield/devctl/internal/ui"
)

// statusCmd reports which servers are currently up.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which servers are running",
	Long: `Report, for each server, whether its port is currently bound.

Status is derived purely from port probing, so it reflects servers
started by any invocation or tool, not just this one.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// roleStatus is one row of status output.
type roleStatus struct {
	Role    string `json:"role"`
	Port    int    `json:"port"`
	Running bool   `json:"running"`
}

// runStatus probes both role ports and reports the result.
//
// Parameters:
//   - cmd: The cobra command.
//   - args: Command arguments (unused).
//
// Returns:
//   - error: Non-nil for probe failures.
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("Failed to load config: %v", err)
		return err
	}

	var statuses []roleStatus
	for _, rc := range []config.RoleConfig{cfg.Frontend, cfg.Backend} {
		bound, err := probe.IsBound(rc.Port)
		if err != nil {
			ui.PrintError("Failed to probe port %d: %v", rc.Port, err)
			return err
		}
		statuses = append(statuses, roleStatus{
			Role:    string(rc.Role),
			Port:    rc.Port,
			Running: bound,
		})
	}

	jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
	if jsonOutput {
		data, _ := json.MarshalIndent(statuses, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println()
	running := 0
	for _, st := range statuses {
		if st.Running {
			ui.PrintSuccess("%s: running on port %d", st.Role, st.Port)
			running++
		} else {
			ui.PrintDim("✗ %s: not running (port %d)", st.Role, st.Port)
		}
	}
	fmt.Println()

	switch running {
	case len(statuses):
		ui.PrintInfo("Both servers are running")
	case 0:
		ui.PrintInfo("No servers are currently running")
	default:
		ui.PrintWarning("Only one server is running")
	}
	return nil
}
