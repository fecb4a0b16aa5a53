package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwaldheim/toggl-jira-report/internal/issuekey"
	"github.com/mwaldheim/toggl-jira-report/internal/model"
	"github.com/mwaldheim/toggl-jira-report/internal/timecalc"
)

// EstimateFunc returns the summed estimate hours of all issues currently
// tagged with the given fix-version in the tracker. It is consulted live
// because a version's membership may be broader than the issues the time
// entries reference.
type EstimateFunc func(version string) (float64, error)

// BuildVersionRows reconciles each fix-version referenced by a resolved
// issue: estimate total from the tracker vs. hours worked in the period
// and overall. An issue with several fix-versions contributes its full
// duration to every one of them. Version names are de-duplicated
// case-insensitively, keeping the first-seen casing; the row order is the
// case-insensitive ascending version order. The estimate function is
// called exactly once per version; its error aborts the build.
func BuildVersionRows(issues map[string]*model.IssueRecord, allTime, period []model.TimeEntry, estimate EstimateFunc) ([]model.VersionRow, error) {
	// Iterate resolved issues in sorted key order so that first-seen
	// casing of version names is deterministic.
	issueKeys := make([]string, 0, len(issues))
	for key := range issues {
		issueKeys = append(issueKeys, key)
	}
	sort.Strings(issueKeys)

	canonical := map[string]string{} // lower-cased name -> first-seen casing
	var versions []string
	keyVersions := map[string][]string{}
	for _, key := range issueKeys {
		rec := issues[key]
		if rec == nil || len(rec.FixVersions) == 0 {
			continue
		}
		names := make([]string, 0, len(rec.FixVersions))
		for _, v := range rec.FixVersions {
			lv := strings.ToLower(v)
			cv, ok := canonical[lv]
			if !ok {
				cv = v
				canonical[lv] = v
				versions = append(versions, v)
			}
			names = append(names, cv)
		}
		keyVersions[strings.ToUpper(key)] = names
	}
	if len(versions) == 0 {
		return nil, nil
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return strings.ToLower(versions[i]) < strings.ToLower(versions[j])
	})

	periodHours := workedHoursByVersion(period, keyVersions)
	totalHours := workedHoursByVersion(allTime, keyVersions)

	rows := make([]model.VersionRow, 0, len(versions))
	for _, v := range versions {
		est, err := estimate(v)
		if err != nil {
			return nil, fmt.Errorf("fetching estimate total for version %q: %w", v, err)
		}
		worked := totalHours[strings.ToLower(v)]
		rows = append(rows, model.VersionRow{
			Version:             v,
			TotalEstimateSum:    est,
			WorkedHoursInPeriod: periodHours[strings.ToLower(v)],
			TotalWorkedHours:    worked,
			Difference:          est - worked,
		})
	}
	return rows, nil
}

// workedHoursByVersion sums entry durations (as hours) per fix-version,
// keyed by lower-cased version name. Entries without a key, or whose key
// has no fix-versions, contribute nothing.
func workedHoursByVersion(entries []model.TimeEntry, keyVersions map[string][]string) map[string]float64 {
	totals := map[string]float64{}
	for _, e := range entries {
		key := issuekey.Extract(e.Description)
		if key == "" {
			continue
		}
		names, ok := keyVersions[key]
		if !ok {
			continue
		}
		hours := timecalc.HoursFromMillis(e.DurationMillis)
		for _, v := range names {
			totals[strings.ToLower(v)] += hours
		}
	}
	return totals
}
