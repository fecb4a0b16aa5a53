package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwaldheim/toggl-jira-report/internal/config"
	"github.com/mwaldheim/toggl-jira-report/internal/export"
	"github.com/mwaldheim/toggl-jira-report/internal/issuekey"
	"github.com/mwaldheim/toggl-jira-report/internal/jira"
	"github.com/mwaldheim/toggl-jira-report/internal/logger"
	"github.com/mwaldheim/toggl-jira-report/internal/model"
	"github.com/mwaldheim/toggl-jira-report/internal/report"
	"github.com/mwaldheim/toggl-jira-report/internal/timecalc"
	"github.com/mwaldheim/toggl-jira-report/internal/toggl"
)

var (
	reportFrom        string
	reportTo          string
	reportMonth       string
	reportOut         string
	reportVersionsOut string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the reconciliation report CSVs",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD); requires --to")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD); requires --from")
	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Report a whole month (YYYY-MM); default is the current month")
	reportCmd.Flags().StringVar(&reportOut, "out", "report.csv", "Output file for the per-person report")
	reportCmd.Flags().StringVar(&reportVersionsOut, "versions-out", "versions.csv", "Output file for the per-version report")
}

// periodRange resolves the reporting period from the flags. Defaults to
// the current calendar month.
func periodRange(now time.Time) (time.Time, time.Time, error) {
	switch {
	case reportFrom != "" || reportTo != "":
		if reportFrom == "" || reportTo == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from and --to must be given together")
		}
		from, err := timecalc.ParseDate(reportFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to, err := timecalc.ParseDate(reportTo)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", reportTo, reportFrom)
		}
		return timecalc.StartOfDay(from), timecalc.EndOfDay(to), nil

	case reportMonth != "":
		m, err := timecalc.ParseMonth(reportMonth)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from, to := timecalc.MonthRange(m)
		return from, to, nil

	default:
		from, to := timecalc.MonthRange(now)
		return from, to, nil
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	from, to, err := periodRange(time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Toggl.WorkspaceID == 0 {
		fmt.Fprintln(os.Stderr, "toggl workspace_id is not configured (edit ~/.tjr/config.json)")
		os.Exit(2)
	}
	if cfg.Jira.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "jira base_url is not configured (edit ~/.tjr/config.json)")
		os.Exit(2)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	allTimeSince, err := timecalc.ParseDate(cfg.Toggl.AllTimeSince)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid all_time_since in config: %v\n", err)
		os.Exit(2)
	}

	log := logger.New()
	ctx := context.Background()

	togglClient := toggl.NewClient(secrets.TogglToken, cfg.Toggl.WorkspaceID, log)
	jiraClient := jira.NewClient(ctx, cfg.Jira.BaseURL, secrets.JiraToken,
		cfg.Jira.BudgetField, cfg.Jira.AccountField, log)

	fmt.Printf("Reporting period %s → %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))

	period, err := togglClient.FetchEntries(ctx, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch period entries: %v\n", err)
		os.Exit(1)
	}
	allTime, err := togglClient.FetchEntries(ctx, allTimeSince, timecalc.EndOfDay(time.Now()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch all-time entries: %v\n", err)
		os.Exit(1)
	}
	log.Info().Int("period", len(period)).Int("all_time", len(allTime)).Msg("fetched toggl entries")

	// Resolve every referenced issue key once; the aggregator only ever
	// sees the complete map.
	universe := report.Keys(append(append([]model.TimeEntry{}, period...), allTime...))
	issues, err := jiraClient.ResolveIssues(ctx, universe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve issues: %v\n", err)
		os.Exit(1)
	}
	log.Info().Int("keys", len(universe)).Msg("resolved issue metadata")

	rows := report.BuildRows(period, issues)
	versionRows, err := report.BuildVersionRows(issues, allTime, period, func(version string) (float64, error) {
		return jiraClient.EstimateTotalForVersion(ctx, version)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build version rows: %v\n", err)
		os.Exit(1)
	}

	if err := export.WriteReportCSV(reportOut, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", reportOut, err)
		os.Exit(2)
	}
	if err := export.WriteVersionsCSV(reportVersionsOut, versionRows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", reportVersionsOut, err)
		os.Exit(2)
	}

	printSummary(period, rows, versionRows)
	return nil
}

// printSummary prints run statistics. Entries without a recognizable
// issue key are excluded from the report by design; the count is shown
// for transparency only.
func printSummary(period []model.TimeEntry, rows []model.ReportRow, versionRows []model.VersionRow) {
	people := map[string]bool{}
	for _, r := range rows {
		people[r.Person] = true
	}
	unkeyed := 0
	for _, e := range period {
		if issuekey.Extract(e.Description) == "" {
			unkeyed++
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d report rows (%d people) → %s\n", len(rows), len(people), reportOut)
	fmt.Printf("  %d version rows → %s\n", len(versionRows), reportVersionsOut)
	if unkeyed > 0 {
		fmt.Printf("  %d period entries without an issue key (excluded)\n", unkeyed)
	}
}
