package domain

import (
	"reflect"
	"testing"
)

func TestFindGapsNonConsecutive(t *testing.T) {
	numbers := []string{"20260001", "20260002", "20260005", "20260006", "20260009"}

	report := FindGaps(2026, numbers)

	if report.TotalIssued != 5 {
		t.Fatalf("expected 5 issued, got %d", report.TotalIssued)
	}
	if report.TotalGaps != 4 {
		t.Fatalf("expected 4 gaps, got %d", report.TotalGaps)
	}
	want := []string{"20260003", "20260004", "20260007", "20260008"}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Fatalf("unexpected gaps: %v", report.Gaps)
	}
}

func TestFindGapsEmptyPeriod(t *testing.T) {
	report := FindGaps(2026, nil)

	if report.TotalIssued != 0 || report.TotalGaps != 0 {
		t.Fatalf("expected zero totals, got issued=%d gaps=%d", report.TotalIssued, report.TotalGaps)
	}
	if len(report.Gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", report.Gaps)
	}
}

func TestFindGapsSingleNumber(t *testing.T) {
	report := FindGaps(2026, []string{"20260007"})

	if report.TotalIssued != 1 {
		t.Fatalf("expected 1 issued, got %d", report.TotalIssued)
	}
	if report.TotalGaps != 0 {
		t.Fatalf("expected no gaps, got %d", report.TotalGaps)
	}
}

func TestFindGapsContiguousRun(t *testing.T) {
	report := FindGaps(2026, []string{"20260001", "20260002", "20260003"})

	if report.TotalGaps != 0 {
		t.Fatalf("expected no gaps, got %v", report.Gaps)
	}
}

func TestFindGapsInvalidYear(t *testing.T) {
	report := FindGaps(0, []string{"20260001"})

	if report.TotalIssued != 0 || report.TotalGaps != 0 || len(report.Gaps) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestFindGapsIgnoresForeignPrefixes(t *testing.T) {
	report := FindGaps(2026, []string{"20260001", "20250003", "20260003"})

	if report.TotalIssued != 2 {
		t.Fatalf("expected 2 issued, got %d", report.TotalIssued)
	}
	want := []string{"20260002"}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Fatalf("unexpected gaps: %v", report.Gaps)
	}
}

func TestFindGapsIsDeterministic(t *testing.T) {
	numbers := []string{"20260009", "20260001", "20260005"}

	first := FindGaps(2026, numbers)
	second := FindGaps(2026, numbers)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ: %+v vs %+v", first, second)
	}
}
