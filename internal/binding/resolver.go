// Package binding resolves element bindings against a document-data
// record. It is the single source of truth for binding lookup and monetary
// formatting, consumed by both the canvas editor preview and the PDF
// renderer so the two can never drift apart.
package binding

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/inkform/docpress/internal/document"
)

// Reserved composite binding keys. These are synthesized from multiple
// record fields rather than looked up as dotted paths.
const (
	BankSummaryKey   = "bankDetails.summary"
	AmountInWordsKey = "amountInWords"
)

// Resolve returns the display string for an element given the current
// record. With no binding path it falls back to the static content. It
// never fails: any missing or unusable path segment resolves to the empty
// string so partial records render blank instead of crashing the render.
func Resolve(rec *document.Record, bindingPath, staticContent string) string {
	if bindingPath == "" {
		return staticContent
	}
	if rec == nil {
		return ""
	}

	switch bindingPath {
	case BankSummaryKey:
		return BankSummary(rec.BankDetails)
	case AmountInWordsKey:
		// Always recomputed from the live grand total, never stored.
		return NumberToWords(rec.GrandTotal, rec.Currency)
	}

	val, ok := lookup(recordMap(rec), bindingPath)
	if !ok {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case float64:
		if IsMonetaryPath(bindingPath) {
			return FormatAmount(v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		// Objects and arrays have no scalar rendering.
		return ""
	}
}

// BankSummary synthesizes the fixed multi-line remittance block used by
// the bank-details composite binding.
func BankSummary(b document.BankDetails) string {
	if b == (document.BankDetails{}) {
		return ""
	}
	return fmt.Sprintf("Account: %s\nBank: %s\nBranch: %s\nAcc No: %s\nSwift: %s\nIBAN: %s",
		b.AccountName, b.BankName, b.Branch, b.AccountNo, b.SwiftCode, b.IbanUsd)
}

// IsMonetaryPath reports whether a binding path refers to money and should
// get thousands separators and two decimal places.
func IsMonetaryPath(path string) bool {
	p := strings.ToLower(path)
	return p == "grandtotal" || strings.Contains(p, "rate") || strings.Contains(p, "total")
}

// FormatAmount renders a monetary amount with thousands separators and
// exactly two decimal places.
func FormatAmount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func recordMap(rec *document.Record) map[string]any {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// lookup walks a dotted path segment by segment. Numeric segments index
// into arrays. Any miss ends the walk.
func lookup(root map[string]any, path string) (any, bool) {
	var cur any = root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok || next == nil {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}
