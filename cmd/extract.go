package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwaldheim/toggl-jira-report/internal/issuekey"
)

var extractCmd = &cobra.Command{
	Use:   "extract [description...]",
	Short: "Show the issue key extracted from descriptions (debug helper)",
	Long: `extract runs the issue-key extractor over its arguments, or over
stdin lines when no arguments are given. Descriptions without a key print
an empty result.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		for _, arg := range args {
			printExtraction(arg)
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		printExtraction(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}

func printExtraction(description string) {
	key := issuekey.Extract(description)
	if key == "" {
		fmt.Printf("-\t%s\n", description)
		return
	}
	fmt.Printf("%s\t%s\n", key, description)
}
