package binding

import (
	"math"
	"strconv"
	"strings"
)

var ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen",
	"Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}

var tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty",
	"Seventy", "Eighty", "Ninety"}

// NumberToWords converts a non-negative amount into upper-cased English
// words in standard banking format, prefixed by the currency name and
// suffixed by "ONLY" for whole amounts or "AND {cents}/100" otherwise.
// It is pure: identical inputs always produce identical strings.
func NumberToWords(amount float64, currency string) string {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	rounded := math.Round(amount*100) / 100
	whole := math.Floor(rounded)
	cents := int(math.Round((rounded - whole) * 100))

	words := strings.ToUpper(convertWhole(int64(whole)))

	name := currencyName(currency)
	result := name + " " + words
	if cents > 0 {
		result += " AND " + strconv.Itoa(cents) + "/100"
	} else {
		result += " ONLY"
	}
	return result
}

// currencyName maps well-known currency codes to their spoken names and
// falls back to the raw code for everything else.
func currencyName(currency string) string {
	switch {
	case strings.Contains(currency, "USD") || currency == "$":
		return "US DOLLARS"
	case strings.Contains(currency, "QAR"):
		return "QATAR RIYALS"
	case strings.Contains(currency, "EUR"):
		return "EUROS"
	case strings.Contains(currency, "GBP"):
		return "POUNDS"
	default:
		return currency
	}
}

func convertWhole(n int64) string {
	if n == 0 {
		return "Zero"
	}

	var sb strings.Builder
	groups := []struct {
		value int64
		name  string
	}{
		{1_000_000_000, "Billion"},
		{1_000_000, "Million"},
		{1_000, "Thousand"},
	}
	for _, g := range groups {
		if n >= g.value {
			sb.WriteString(convertGroup(int(n / g.value)))
			sb.WriteString(" " + g.name + " ")
			n %= g.value
		}
	}
	if n > 0 {
		sb.WriteString(convertGroup(int(n)))
	}
	return strings.TrimSpace(sb.String())
}

// convertGroup spells out 0-999 with hyphenated tens.
func convertGroup(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 20:
		return ones[n]
	case n < 100:
		s := tens[n/10]
		if n%10 != 0 {
			s += "-" + ones[n%10]
		}
		return s
	default:
		s := ones[n/100] + " Hundred"
		if n%100 != 0 {
			s += " " + convertGroup(n%100)
		}
		return s
	}
}
