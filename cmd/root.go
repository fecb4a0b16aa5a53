package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tjr",
	Short: "Toggl/Jira reconciliation reporter",
	Long: `tjr cross-references Toggl time entries with Jira issue metadata and
produces two CSV reports: time spent per person and issue, and estimated
vs. actually-worked hours per fix-version.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(extractCmd)
}
