package invoice

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals are the derived amounts of a draft, always rounded to two decimals
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// MarshalJSON renders each amount with exactly two decimals, as shown on the invoice
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"subtotal": t.Subtotal.StringFixed(2),
		"discount": t.Discount.StringFixed(2),
		"total":    t.Total.StringFixed(2),
	})
}

// leading numeric prefix, the same prefix a live-typing form accepts as it is typed
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Amounts past these bounds read as zero, like any other unusable input.
const (
	maxAmountExponent = 15
	maxIntegerDigits  = 15
)

// ParseAmount leniently parses user input. Anything without a leading number, or with a
// magnitude beyond maxIntegerDigits, is zero; it never fails.
func ParseAmount(raw string) decimal.Decimal {
	m := numericPrefix.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return decimal.Zero
	}
	if exp := m[2]; exp != "" {
		e, err := strconv.Atoi(exp[1:])
		if err != nil || e > maxAmountExponent || e < -maxAmountExponent {
			return decimal.Zero
		}
	}
	d, err := decimal.NewFromString(m[0])
	if err != nil {
		return decimal.Zero
	}
	if int(d.NumDigits())+int(d.Exponent()) > maxIntegerDigits {
		return decimal.Zero
	}
	return d
}

// ParsePrice is ParseAmount clamped at zero; unit prices are never negative
func ParsePrice(raw string) decimal.Decimal {
	d := ParseAmount(raw)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ComputeTotals sums line prices and applies the discount. The discount itself is
// not clamped (a negative discount acts as a surcharge), only the final total is.
func ComputeTotals(items []DraftLineItem, discount string) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(ParsePrice(item.Price))
	}
	d := ParseAmount(discount)

	total := subtotal.Sub(d)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal.Round(2),
		Discount: d.Round(2),
		Total:    total.Round(2),
	}
}
