// Package report builds the reconciliation report: per-person time rows
// for the reporting period and per-version estimate/actual totals.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/mwaldheim/toggl-jira-report/internal/issuekey"
	"github.com/mwaldheim/toggl-jira-report/internal/model"
	"github.com/mwaldheim/toggl-jira-report/internal/timecalc"
)

// group accumulates entries for one (issue key, person, email) triple.
type group struct {
	key         string
	person      string
	email       string
	totalMillis int64
	earliest    time.Time
}

// BuildRows groups the period entries by (issue key, person, email), sums
// their durations and joins the resolved issue metadata. Entries whose
// description does not start with an issue key are skipped. A key that
// resolved to no record (nil in the map, or missing from it) yields a row
// with empty issue fields. Rows are sorted by key, then person, both
// case-insensitive.
func BuildRows(entries []model.TimeEntry, issues map[string]*model.IssueRecord) []model.ReportRow {
	groups := map[string]*group{}
	for _, e := range entries {
		key := issuekey.Extract(e.Description)
		if key == "" {
			continue
		}
		gk := key + "\x00" + e.Person + "\x00" + e.Email
		g, ok := groups[gk]
		if !ok {
			g = &group{key: key, person: e.Person, email: e.Email, earliest: e.Start}
			groups[gk] = g
		}
		g.totalMillis += e.DurationMillis
		if e.Start.Before(g.earliest) {
			g.earliest = e.Start
		}
	}

	rows := make([]model.ReportRow, 0, len(groups))
	for _, g := range groups {
		row := model.ReportRow{
			Key:             g.key,
			Person:          g.person,
			StartDate:       g.earliest.Format("2006-01-02"),
			TimeUsedHHMM:    timecalc.FormatHHMM(g.totalMillis),
			TimeUsedDecimal: timecalc.FormatDecimalHours(g.totalMillis),
		}
		// Extract returns canonical upper-case keys and the map is keyed
		// the same way, so the lookup needs no further normalization.
		if rec := issues[g.key]; rec != nil {
			row.IssueType = rec.IssueType
			row.Summary = rec.Summary
			row.Budget = rec.Budget
			row.Account = rec.Account
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := strings.ToLower(rows[i].Key), strings.ToLower(rows[j].Key)
		if ki != kj {
			return ki < kj
		}
		pi, pj := strings.ToLower(rows[i].Person), strings.ToLower(rows[j].Person)
		if pi != pj {
			return pi < pj
		}
		return rows[i].Person < rows[j].Person
	})
	return rows
}

// Keys returns the distinct issue keys referenced by the given entries,
// in canonical upper-case form. Entries without a key are ignored.
func Keys(entries []model.TimeEntry) []string {
	seen := map[string]bool{}
	var keys []string
	for _, e := range entries {
		key := issuekey.Extract(e.Description)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
