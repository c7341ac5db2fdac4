package domain

import "sort"

// GapReport lists the expected-but-unissued numbers inside a year's
// sequence, formatted the same way real numbers are so they can be
// searched for directly.
type GapReport struct {
	Year        int      `json:"year"`
	TotalIssued int      `json:"total_issued"`
	TotalGaps   int      `json:"total_gaps"`
	Gaps        []string `json:"gaps"`
}

// FindGaps walks the issued ordinals for a year from the lowest to the
// highest and reports every missing one. A non-positive year, an empty
// sequence, or a single issued number all yield zero gaps. Numbers that
// do not carry the year prefix are ignored.
func FindGaps(year int, numbers []string) GapReport {
	report := GapReport{Year: year, Gaps: []string{}}
	if year <= 0 {
		return report
	}

	issued := make(map[int]struct{}, len(numbers))
	ordinals := make([]int, 0, len(numbers))
	for _, number := range numbers {
		ordinal, ok := ParseInvoiceOrdinal(year, number)
		if !ok {
			continue
		}
		if _, seen := issued[ordinal]; seen {
			continue
		}
		issued[ordinal] = struct{}{}
		ordinals = append(ordinals, ordinal)
	}

	report.TotalIssued = len(ordinals)
	if len(ordinals) < 2 {
		return report
	}

	sort.Ints(ordinals)
	lowest, highest := ordinals[0], ordinals[len(ordinals)-1]
	for ordinal := lowest; ordinal <= highest; ordinal++ {
		if _, ok := issued[ordinal]; !ok {
			report.Gaps = append(report.Gaps, FormatInvoiceNumber(year, ordinal))
		}
	}
	report.TotalGaps = len(report.Gaps)
	return report
}
