package invoice

import (
	"fmt"
	"regexp"
	"strconv"
)

// FormatInvoiceNumber renders prefix-N with N zero padded to at least width digits
func FormatInvoiceNumber(prefix string, n, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

// ParseSequence extracts the numeric suffix of an invoice number carrying prefix.
// Matching is case-insensitive and anchored at the start; trailing text after the
// digits is ignored.
func ParseSequence(prefix, invoiceNumber string) (int, bool) {
	m := sequencePattern(prefix).FindStringSubmatch(invoiceNumber)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxSequence is the in-memory fallback for stores that cannot compute it in a query
func MaxSequence(prefix string, invoiceNumbers []string) int {
	pattern := sequencePattern(prefix)
	max := 0
	for _, number := range invoiceNumbers {
		m := pattern.FindStringSubmatch(number)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

func sequencePattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `-(\d+)`)
}
