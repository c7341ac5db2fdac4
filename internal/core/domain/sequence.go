package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Invoice numbers are <year><ordinal>, e.g. 20260001. The ordinal is
// zero-padded to a fixed width so numbers sort and compare as strings.
const invoiceOrdinalWidth = 4

// InvoiceCounterName returns the per-year counter identifier, e.g.
// "invoices-2026". Years get independent counters so issuance for one
// year never serializes behind another.
func InvoiceCounterName(year int) string {
	return fmt.Sprintf("invoices-%d", year)
}

// FormatInvoiceNumber renders an ordinal with the year prefix and the
// fixed-width padding every issued number carries.
func FormatInvoiceNumber(year, ordinal int) string {
	return fmt.Sprintf("%d%0*d", year, invoiceOrdinalWidth, ordinal)
}

// ParseInvoiceOrdinal extracts the ordinal from a formatted number for
// the given year. Numbers with a different year prefix, or a non-numeric
// suffix, report ok=false.
func ParseInvoiceOrdinal(year int, number string) (int, bool) {
	prefix := strconv.Itoa(year)
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	suffix := number[len(prefix):]
	if suffix == "" {
		return 0, false
	}
	ordinal, err := strconv.Atoi(suffix)
	if err != nil || ordinal <= 0 {
		return 0, false
	}
	return ordinal, true
}
