package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scamshield/devctl/internal/lint"
	"github.com/scamshield/devctl/internal/ui"
)

// lintCmd is the parent command for project lint checks.
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run project lint checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// lintLocalesCmd checks locale JSON files for duplicate keys.
var lintLocalesCmd = &cobra.Command{
	Use:   "locales [files...]",
	Short: "Check locale JSON files for duplicate keys",
	Long: `Check JSON locale files for duplicated translation keys.

JSON keeps only the last occurrence of a duplicated key, so a duplicate
silently drops the earlier translation. This check scans each object in
the file and reports every key that appears more than once, with line
numbers.

With no arguments, checks ` + lint.DefaultLocalesGlob + `.`,
	RunE: runLintLocales,
}

func init() {
	lintCmd.AddCommand(lintLocalesCmd)
}

// runLintLocales checks the given files (or the default locale glob)
// for duplicate keys.
//
// Parameters:
//   - cmd: The cobra command.
//   - args: Optional file paths.
//
// Returns:
//   - error: Non-nil if duplicates were found or a file failed to parse.
func runLintLocales(cmd *cobra.Command, args []string) error {
	var dupes []lint.DuplicateKey
	var checked []string

	if len(args) == 0 {
		var err error
		dupes, checked, err = lint.CheckGlob(lint.DefaultLocalesGlob)
		if err != nil {
			ui.PrintError("%v", err)
			return err
		}
		if len(checked) == 0 {
			ui.PrintWarning("No locale files matched %s", lint.DefaultLocalesGlob)
			return nil
		}
	} else {
		for _, path := range args {
			fileDupes, err := lint.CheckFile(path)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}
			dupes = append(dupes, fileDupes...)
			checked = append(checked, path)
		}
	}

	for _, f := range checked {
		ui.PrintDim("Checked %s", f)
	}

	if len(dupes) == 0 {
		ui.PrintSuccess("No duplicate keys found in %d file(s)", len(checked))
		return nil
	}

	fmt.Println()
	for _, d := range dupes {
		ui.PrintError("%s", d)
	}
	return fmt.Errorf("found %d duplicate key(s)", len(dupes))
}
