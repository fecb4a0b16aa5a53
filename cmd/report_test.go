package cmd

import (
	"testing"
	"time"
)

func resetReportFlags() {
	reportFrom = ""
	reportTo = ""
	reportMonth = ""
}

func TestPeriodRangeDefaultsToCurrentMonth(t *testing.T) {
	resetReportFlags()
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	from, to, err := periodRange(now)
	if err != nil {
		t.Fatalf("periodRange: %v", err)
	}
	if from.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("from = %v", from)
	}
	if to.Format("2006-01-02") != "2026-02-28" {
		t.Errorf("to = %v", to)
	}
}

func TestPeriodRangeMonthFlag(t *testing.T) {
	resetReportFlags()
	reportMonth = "2025-12"

	from, to, err := periodRange(time.Now())
	if err != nil {
		t.Fatalf("periodRange: %v", err)
	}
	if from.Format("2006-01-02") != "2025-12-01" || to.Format("2006-01-02") != "2025-12-31" {
		t.Errorf("range = %v → %v", from, to)
	}
}

func TestPeriodRangeExplicitDates(t *testing.T) {
	resetReportFlags()
	reportFrom = "2026-01-15"
	reportTo = "2026-02-15"

	from, to, err := periodRange(time.Now())
	if err != nil {
		t.Fatalf("periodRange: %v", err)
	}
	if from.Format("2006-01-02") != "2026-01-15" || to.Format("2006-01-02") != "2026-02-15" {
		t.Errorf("range = %v → %v", from, to)
	}
	if to.Hour() != 23 || to.Minute() != 59 {
		t.Errorf("to should be end of day, got %v", to)
	}
}

func TestPeriodRangeRejectsHalfRange(t *testing.T) {
	resetReportFlags()
	reportFrom = "2026-01-15"

	if _, _, err := periodRange(time.Now()); err == nil {
		t.Error("expected error when --to is missing")
	}
}

func TestPeriodRangeRejectsReversedRange(t *testing.T) {
	resetReportFlags()
	reportFrom = "2026-02-15"
	reportTo = "2026-01-15"

	if _, _, err := periodRange(time.Now()); err == nil {
		t.Error("expected error for reversed range")
	}
}
