// Package main provides the entry point for the devctl CLI.
//
// devctl starts, stops, and supervises the two local dev servers of the
// project: the Vite frontend and the Express backend. Run without
// arguments it launches both and supervises them until one dies or the
// user interrupts.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/scamshield/devctl/internal/ui"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command. With no arguments it starts both
// servers as a joint supervised session.
var rootCmd = &cobra.Command{
	Use:   "devctl",
	Short: "Start and supervise the local dev servers",
	Long: `devctl manages the project's two local dev servers.

Run without arguments to start both the frontend (Vite) and the backend
(Express) together. Their output is interleaved with colored per-server
prefixes, and if either server dies the other is stopped too. Press
Ctrl+C to stop both.

EXAMPLES:
  devctl                   # Start both servers, supervised
  devctl start frontend    # Start only the frontend, in the foreground
  devctl stop backend      # Stop a running backend by port
  devctl status            # Show which servers are up`,
	Args: cobra.NoArgs,
	RunE: runStartBoth,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("Debug logging enabled")
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		ui.SetQuietMode(quiet)
	},
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON (where supported)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")

	// Subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(lintCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintInfo("Version: %s", version)
		ui.PrintInfo("Commit: %s", commit)
		ui.PrintInfo("Built: %s", date)
	},
}

func main() {
	Execute()
}
