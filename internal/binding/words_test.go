package binding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{0, "USD", "US DOLLARS ZERO ONLY"},
		{1, "USD", "US DOLLARS ONE ONLY"},
		{15, "USD", "US DOLLARS FIFTEEN ONLY"},
		{21, "USD", "US DOLLARS TWENTY-ONE ONLY"},
		{100, "QAR", "QATAR RIYALS ONE HUNDRED ONLY"},
		{115, "EUR", "EUROS ONE HUNDRED FIFTEEN ONLY"},
		{1000, "GBP", "POUNDS ONE THOUSAND ONLY"},
		{15420.50, "USD", "US DOLLARS FIFTEEN THOUSAND FOUR HUNDRED TWENTY AND 50/100"},
		{1_000_000, "USD", "US DOLLARS ONE MILLION ONLY"},
		{2_000_000_000, "USD", "US DOLLARS TWO BILLION ONLY"},
		{1234567.89, "USD", "US DOLLARS ONE MILLION TWO HUNDRED THIRTY-FOUR THOUSAND FIVE HUNDRED SIXTY-SEVEN AND 89/100"},
		{250.00, "AED", "AED TWO HUNDRED FIFTY ONLY"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberToWords(tt.amount, tt.currency),
			"NumberToWords(%v, %q)", tt.amount, tt.currency)
	}
}

func TestNumberToWordsDeterministic(t *testing.T) {
	first := NumberToWords(15420.50, "USD")
	for i := 0; i < 100; i++ {
		if got := NumberToWords(15420.50, "USD"); got != first {
			t.Fatalf("call %d produced %q, want %q", i, got, first)
		}
	}
	assert.True(t, strings.HasSuffix(first, "AND 50/100"))
	assert.Contains(t, first, "US DOLLARS")

	qar := NumberToWords(100, "QAR")
	assert.True(t, strings.HasSuffix(qar, "ONLY"))
	assert.Contains(t, qar, "QATAR RIYALS")
}

func TestNumberToWordsRounding(t *testing.T) {
	// 99.999 rounds to 100.00, not 99 AND 100/100.
	assert.Equal(t, "US DOLLARS ONE HUNDRED ONLY", NumberToWords(99.999, "USD"))
	// Negative and non-finite inputs degrade to zero.
	assert.Equal(t, "US DOLLARS ZERO ONLY", NumberToWords(-5, "USD"))
}
