package invoice

import "strings"

var (
	onesWords = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen"}
	tensWords = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

// NumberToWords spells n in English using Indian grouping (crore, lakh, thousand).
// Counts of crores above 999 are themselves spelled with the same grouping.
func NumberToWords(n uint64) string {
	if n == 0 {
		return "Zero"
	}
	return strings.Join(groupWords(n), " ")
}

func groupWords(n uint64) []string {
	var words []string
	if c := n / crore; c > 0 {
		words = append(words, groupWords(c)...)
		words = append(words, "Crore")
		n %= crore
	}
	if l := n / lakh; l > 0 {
		words = append(words, belowThousand(l)...)
		words = append(words, "Lakh")
		n %= lakh
	}
	if t := n / thousand; t > 0 {
		words = append(words, belowThousand(t)...)
		words = append(words, "Thousand")
		n %= thousand
	}
	return append(words, belowThousand(n)...)
}

func belowThousand(n uint64) []string {
	switch {
	case n == 0:
		return nil
	case n < 20:
		return []string{onesWords[n]}
	case n < 100:
		words := []string{tensWords[n/10]}
		if n%10 != 0 {
			words = append(words, onesWords[n%10])
		}
		return words
	default:
		return append([]string{onesWords[n/100], "Hundred"}, belowThousand(n%100)...)
	}
}
