package report_test

import (
	"errors"
	"testing"

	"github.com/mwaldheim/toggl-jira-report/internal/model"
	"github.com/mwaldheim/toggl-jira-report/internal/report"
)

func issueWithVersions(key string, versions ...string) *model.IssueRecord {
	return &model.IssueRecord{Key: key, FixVersions: versions}
}

func constEstimate(v float64) report.EstimateFunc {
	return func(string) (float64, error) { return v, nil }
}

func TestBuildVersionRows_Reconciliation(t *testing.T) {
	issues := map[string]*model.IssueRecord{
		"PROJ-1": issueWithVersions("PROJ-1", "v1"),
	}
	period := []model.TimeEntry{
		entry("PROJ-1 work", "Alice", "alice@example.com", day, 3*3_600_000),
	}
	allTime := []model.TimeEntry{
		entry("PROJ-1 work", "Alice", "alice@example.com", day, 3*3_600_000),
		entry("PROJ-1 earlier", "Alice", "alice@example.com", day.AddDate(0, -2, 0), 4*3_600_000),
	}

	rows, err := report.BuildVersionRows(issues, allTime, period, constEstimate(10.0))
	if err != nil {
		t.Fatalf("BuildVersionRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Version != "v1" {
		t.Errorf("Version = %q, want %q", r.Version, "v1")
	}
	if r.TotalEstimateSum != 10.0 {
		t.Errorf("TotalEstimateSum = %v, want 10.0", r.TotalEstimateSum)
	}
	if r.WorkedHoursInPeriod != 3.0 {
		t.Errorf("WorkedHoursInPeriod = %v, want 3.0", r.WorkedHoursInPeriod)
	}
	if r.TotalWorkedHours != 7.0 {
		t.Errorf("TotalWorkedHours = %v, want 7.0", r.TotalWorkedHours)
	}
	if r.Difference != 3.0 {
		t.Errorf("Difference = %v, want 3.0", r.Difference)
	}
}

func TestBuildVersionRows_DurationReplicatedPerVersion(t *testing.T) {
	issues := map[string]*model.IssueRecord{
		"PROJ-1": issueWithVersions("PROJ-1", "v1", "v2"),
	}
	entries := []model.TimeEntry{
		entry("PROJ-1 work", "Alice", "alice@example.com", day, 2*3_600_000),
	}

	rows, err := report.BuildVersionRows(issues, entries, entries, constEstimate(0))
	if err != nil {
		t.Fatalf("BuildVersionRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.TotalWorkedHours != 2.0 {
			t.Errorf("version %q TotalWorkedHours = %v, want 2.0 (replicated, not split)", r.Version, r.TotalWorkedHours)
		}
	}
}

func TestBuildVersionRows_EstimateFetchedOncePerVersion(t *testing.T) {
	issues := map[string]*model.IssueRecord{
		"PROJ-1": issueWithVersions("PROJ-1", "v1", "v2"),
		"WEB-2":  issueWithVersions("WEB-2", "v2", "v3"),
	}

	calls := map[string]int{}
	estimate := func(version string) (float64, error) {
		calls[version]++
		return 5.0, nil
	}

	rows, err := report.BuildVersionRows(issues, nil, nil, estimate)
	if err != nil {
		t.Fatalf("BuildVersionRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, v := range []string{"v1", "v2", "v3"} {
		if calls[v] != 1 {
			t.Errorf("estimate(%q) called %d times, want 1", v, calls[v])
		}
	}
	// No worked entries: totals default to zero, difference is the estimate.
	for _, r := range rows {
		if r.WorkedHoursInPeriod != 0 || r.TotalWorkedHours != 0 {
			t.Errorf("version %q worked hours = %v/%v, want 0/0", r.Version, r.WorkedHoursInPeriod, r.TotalWorkedHours)
		}
		if r.Difference != 5.0 {
			t.Errorf("version %q Difference = %v, want 5.0", r.Version, r.Difference)
		}
	}
}

func TestBuildVersionRows_SortedCaseInsensitive(t *testing.T) {
	issues := map[string]*model.IssueRecord{
		"AA-1": issueWithVersions("AA-1", "Sprint-10"),
		"BB-2": issueWithVersions("BB-2", "alpha"),
		"CC-3": issueWithVersions("CC-3", "Beta"),
	}
	rows, err := report.BuildVersionRows(issues, nil, nil, constEstimate(0))
	if err != nil {
		t.Fatalf("BuildVersionRows: %v", err)
	}
	want := []string{"alpha", "Beta", "Sprint-10"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i].Version != want[i] {
			t.Errorf("rows[%d].Version = %q, want %q", i, rows[i].Version, want[i])
		}
	}
}

func TestBuildVersionRows_CaseInsensitiveVersionDedup(t *testing.T) {
	// "V1" and "v1" are the same version; first-seen casing (sorted key
	// order, so AA-1 before BB-2) wins.
	issues := map[string]*model.IssueRecord{
		"AA-1": issueWithVersions("AA-1", "V1"),
		"BB-2": issueWithVersions("BB-2", "v1"),
	}
	entries := []model.TimeEntry{
		entry("AA-1 work", "Alice", "alice@example.com", day, 3_600_000),
		entry("BB-2 work", "Bob", "bob@example.com", day, 3_600_000),
	}
	rows, err := report.BuildVersionRows(issues, entries, nil, constEstimate(0))
	if err != nil {
		t.Fatalf("BuildVersionRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Version != "V1" {
		t.Errorf("Version = %q, want %q", rows[0].Version, "V1")
	}
	if rows[0].TotalWorkedHours != 2.0 {
		t.Errorf("TotalWorkedHours = %v, want 2.0", rows[0].TotalWorkedHours)
	}
}

func TestBuildVersionRows_NoVersionsNoRows(t *testing.T) {
	issues := map[string]*model.IssueRecord{
		"PROJ-1": {Key: "PROJ-1", Summary: "no fix version"},
		"PROJ-2": nil,
	}
	called := false
	rows, err := report.BuildVersionRows(issues, nil, nil, func(string) (float64, error) {
		called = true
		return 0, nil
	})
	if err != nil {
		t.Fatalf("BuildVersionRows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
	if called {
		t.Error("estimate must not be called when no versions are referenced")
	}
}

func TestBuildVersionRows_EstimateErrorPropagates(t *testing.T) {
	issues := map[string]*model.IssueRecord{
		"PROJ-1": issueWithVersions("PROJ-1", "v1"),
	}
	wantErr := errors.New("jira down")
	_, err := report.BuildVersionRows(issues, nil, nil, func(string) (float64, error) {
		return 0, wantErr
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}
