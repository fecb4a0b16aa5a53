package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwaldheim/toggl-jira-report/internal/config"
	"github.com/mwaldheim/toggl-jira-report/internal/jira"
	"github.com/mwaldheim/toggl-jira-report/internal/logger"
	"github.com/mwaldheim/toggl-jira-report/internal/toggl"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check Toggl and Jira credentials",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New()
	ctx := context.Background()
	failed := false

	togglClient := toggl.NewClient(secrets.TogglToken, cfg.Toggl.WorkspaceID, log)
	if email, err := togglClient.Me(ctx); err != nil {
		fmt.Printf("  ✗ Toggl: %v\n", err)
		failed = true
	} else {
		fmt.Printf("  ✓ Toggl: authenticated as %s\n", email)
	}

	if cfg.Jira.BaseURL == "" {
		fmt.Println("  ✗ Jira: base_url is not configured")
		failed = true
	} else {
		jiraClient := jira.NewClient(ctx, cfg.Jira.BaseURL, secrets.JiraToken,
			cfg.Jira.BudgetField, cfg.Jira.AccountField, log)
		if name, err := jiraClient.Myself(ctx); err != nil {
			fmt.Printf("  ✗ Jira: %v\n", err)
			failed = true
		} else {
			fmt.Printf("  ✓ Jira: authenticated as %s\n", name)
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}
