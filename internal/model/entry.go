package model

import "time"

// TimeEntry is a single tracked time entry as delivered by Toggl.
type TimeEntry struct {
	ID             int64
	Description    string
	Person         string
	Email          string
	Start          time.Time
	DurationMillis int64
}

// IssueRecord holds the Jira metadata for one issue key. An issue that
// could not be resolved is represented as a nil *IssueRecord, never as a
// zero-value record.
type IssueRecord struct {
	Key           string
	IssueType     string
	Summary       string
	Budget        string
	Account       string
	FixVersions   []string
	EstimateHours *float64
}

// ReportRow is one line of the per-person report: the time one person
// spent on one issue during the reporting period.
type ReportRow struct {
	IssueType       string
	Key             string
	Summary         string
	Budget          string
	Account         string
	Person          string
	StartDate       string
	TimeUsedHHMM    string
	TimeUsedDecimal string
}

// VersionRow reconciles one fix-version: the estimate sum currently in
// Jira against the hours actually worked, in the period and overall.
type VersionRow struct {
	Version             string
	TotalEstimateSum    float64
	WorkedHoursInPeriod float64
	TotalWorkedHours    float64
	Difference          float64
}
