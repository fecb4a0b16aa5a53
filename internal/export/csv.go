// Package export writes the report and version rows as CSV files.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/mwaldheim/toggl-jira-report/internal/model"
	"github.com/mwaldheim/toggl-jira-report/internal/timecalc"
)

// WriteReportCSV writes the per-person report rows to path.
func WriteReportCSV(path string, rows []model.ReportRow) error {
	var b strings.Builder
	b.WriteString("issue_type,key,summary,budget,account,person,start_date,time_used,time_used_decimal\n")
	for _, r := range rows {
		writeLine(&b,
			r.IssueType, r.Key, r.Summary, r.Budget, r.Account,
			r.Person, r.StartDate, r.TimeUsedHHMM, r.TimeUsedDecimal)
	}
	return writeFile(path, b.String())
}

// WriteVersionsCSV writes the per-version reconciliation rows to path.
// Hour values are formatted with two decimals.
func WriteVersionsCSV(path string, rows []model.VersionRow) error {
	var b strings.Builder
	b.WriteString("version,estimated_hours,worked_hours_period,worked_hours_total,difference\n")
	for _, r := range rows {
		writeLine(&b,
			r.Version,
			timecalc.FormatHours(r.TotalEstimateSum),
			timecalc.FormatHours(r.WorkedHoursInPeriod),
			timecalc.FormatHours(r.TotalWorkedHours),
			timecalc.FormatHours(r.Difference))
	}
	return writeFile(path, b.String())
}

func writeLine(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvEscape(f))
	}
	b.WriteByte('\n')
}

// writeFile writes atomically: temp file in the target directory, then
// rename.
func writeFile(path, content string) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
