package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "GP-0001", FormatInvoiceNumber("GP", 1, 4))
	assert.Equal(t, "GP-0123", FormatInvoiceNumber("GP", 123, 4))
	assert.Equal(t, "GP-12345", FormatInvoiceNumber("GP", 12345, 4))
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		number string
		want   int
		ok     bool
	}{
		{number: "GP-0007", want: 7, ok: true},
		{number: "gp-0012", want: 12, ok: true},
		{number: "GP-15-final", want: 15, ok: true},
		{number: "XGP-0001", ok: false},
		{number: "GP0001", ok: false},
		{number: "INV-0001", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			got, ok := ParseSequence("GP", tt.number)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaxSequence(t *testing.T) {
	assert.Equal(t, 7, MaxSequence("GP", []string{"GP-0001", "GP-0007", "GP-0003"}))
	assert.Equal(t, 0, MaxSequence("GP", []string{"INV-0009", "custom"}))
	assert.Equal(t, 0, MaxSequence("GP", nil))
}
