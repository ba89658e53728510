package document

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds an amount to two decimal places, the display precision
// used everywhere money is stored or rendered.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseAmount converts user input to a numeric amount. Anything that does
// not parse is coerced to 0 so NaN never reaches a stored total.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Recalc re-derives every line total and the grand total. It is the single
// place the derived-total invariant is enforced; every mutation below ends
// by calling it.
func (r *Record) Recalc() {
	sum := 0.0
	for i := range r.Summary {
		line := &r.Summary[i]
		line.Total = Round2(line.Quantity * line.Rate)
		sum += line.Total
	}
	r.GrandTotal = Round2(sum)
}

// AddLine appends a line item and recomputes totals.
func (r *Record) AddLine(line Line) {
	r.Summary = append(r.Summary, line)
	r.Recalc()
}

// RemoveLine deletes the line at index i. Out-of-range indexes are ignored.
func (r *Record) RemoveLine(i int) {
	if i < 0 || i >= len(r.Summary) {
		return
	}
	r.Summary = append(r.Summary[:i], r.Summary[i+1:]...)
	r.Recalc()
}

// SetLineQuantity updates the quantity of line i and recomputes totals.
func (r *Record) SetLineQuantity(i int, quantity float64) {
	if i < 0 || i >= len(r.Summary) {
		return
	}
	r.Summary[i].Quantity = quantity
	r.Recalc()
}

// SetLineRate updates the rate of line i and recomputes totals.
func (r *Record) SetLineRate(i int, rate float64) {
	if i < 0 || i >= len(r.Summary) {
		return
	}
	r.Summary[i].Rate = rate
	r.Recalc()
}

// SetLineDescription updates the description of line i.
func (r *Record) SetLineDescription(i int, description string) {
	if i < 0 || i >= len(r.Summary) {
		return
	}
	r.Summary[i].Description = description
}

// Merge combines an extracted record with a template. Template fields act
// as defaults and extracted fields override where present, except vendor
// identity which always comes from the template. The result carries the
// template's elements and layout so it can be rendered immediately.
func Merge(tmpl *Template, extracted *Record, kind DocumentKind, fileName string) *Record {
	merged := *extracted

	// Recalc below rewrites line totals; without its own copy the merged
	// record would share the extracted slice and clobber the raw extraction.
	merged.Summary = append([]Line(nil), extracted.Summary...)

	merged.Layout = tmpl.Layout
	merged.Elements = tmpl.Elements

	meta := extracted.Metadata
	meta.VendorName = tmpl.Metadata.VendorName
	meta.VendorAddress = tmpl.Metadata.VendorAddress
	meta.VendorPhone = tmpl.Metadata.VendorPhone
	meta.VendorFax = tmpl.Metadata.VendorFax
	meta.VendorEmail = tmpl.Metadata.VendorEmail

	if kind == KindPO {
		meta.DocumentTitle = "Pro forma invoice:"
	} else if tmpl.Metadata.DocumentTitle != "" {
		meta.DocumentTitle = tmpl.Metadata.DocumentTitle
	} else {
		meta.DocumentTitle = "Pro forma invoice:"
	}

	if meta.ClientName == "" {
		meta.ClientName = tmpl.Metadata.ClientName
	}
	if meta.PaymentTerms == "" {
		meta.PaymentTerms = tmpl.Metadata.PaymentTerms
	}
	if meta.ScopeOfWork == "" {
		meta.ScopeOfWork = tmpl.Metadata.ScopeOfWork
	}

	currency := extracted.Currency
	if currency == "" {
		currency = tmpl.Metadata.Currency
	}
	if currency == "" {
		currency = "USD"
	}
	meta.Currency = currency
	merged.Currency = currency
	merged.Metadata = meta

	// Template bank details always win over anything extracted.
	bank := extracted.BankDetails
	overlayBankDetails(&bank, &tmpl.BankDetails)
	merged.BankDetails = bank

	merged.OriginalFileName = fileName
	merged.Recalc()
	return &merged
}

func overlayBankDetails(dst, src *BankDetails) {
	if src.AccountName != "" {
		dst.AccountName = src.AccountName
	}
	if src.BankName != "" {
		dst.BankName = src.BankName
	}
	if src.Branch != "" {
		dst.Branch = src.Branch
	}
	if src.AccountNo != "" {
		dst.AccountNo = src.AccountNo
	}
	if src.SwiftCode != "" {
		dst.SwiftCode = src.SwiftCode
	}
	if src.IbanQar != "" {
		dst.IbanQar = src.IbanQar
	}
	if src.IbanUsd != "" {
		dst.IbanUsd = src.IbanUsd
	}
	if src.Currency != "" {
		dst.Currency = src.Currency
	}
}
