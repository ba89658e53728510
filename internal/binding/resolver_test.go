package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkform/docpress/internal/document"
)

func sampleRecord() *document.Record {
	rec := &document.Record{
		Metadata: document.Metadata{
			VendorName:    "VELOSI CERTIFICATION L.L.C.",
			ClientName:    "QatarEnergy LNG",
			InvoiceNumber: "3126000114",
		},
		Summary: []document.Line{
			{Description: "Senior Welding Inspector", Quantity: 26, Unit: "Day", Rate: 350},
			{Description: "Mobilization Fee", Quantity: 1, Unit: "L/S", Rate: 1000},
		},
		Currency: "USD",
		BankDetails: document.BankDetails{
			AccountName: "VELOSI CERTIFICATION LLC",
			BankName:    "BNP PARIBAS",
			Branch:      "Al Fardan Office Tower",
			AccountNo:   "06691 093293 001 60",
			SwiftCode:   "BNPAQAQA",
			IbanUsd:     "QA88BNPA000669109329300160USD",
		},
	}
	rec.Recalc()
	return rec
}

func TestResolveStaticContent(t *testing.T) {
	rec := sampleRecord()
	assert.Equal(t, "hello", Resolve(rec, "", "hello"))
	assert.Equal(t, "", Resolve(rec, "", ""))
}

func TestResolveDottedPaths(t *testing.T) {
	rec := sampleRecord()

	tests := []struct {
		path string
		want string
	}{
		{"metadata.vendorName", "VELOSI CERTIFICATION L.L.C."},
		{"metadata.clientName", "QatarEnergy LNG"},
		{"currency", "USD"},
		{"grandTotal", "10,100.00"},
		{"summary.0.rate", "350.00"},
		{"summary.0.quantity", "26"},
		{"summary.1.total", "1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(rec, tt.path, "fallback"), "path %q", tt.path)
	}
}

func TestResolveNeverThrows(t *testing.T) {
	paths := []string{
		"metadata.missing",
		"missing",
		"metadata.vendorName.deeper",
		"summary.99.rate",
		"summary.x.rate",
		"...",
		"summary",
		"metadata",
	}
	records := []*document.Record{sampleRecord(), {}, nil}
	for _, rec := range records {
		for _, p := range paths {
			got := Resolve(rec, p, "static")
			assert.Equal(t, "", got, "path %q should resolve blank", p)
		}
	}
}

func TestResolveCompositeBindings(t *testing.T) {
	rec := sampleRecord()

	bank := Resolve(rec, BankSummaryKey, "")
	assert.Contains(t, bank, "Account: VELOSI CERTIFICATION LLC")
	assert.Contains(t, bank, "Bank: BNP PARIBAS")
	assert.Contains(t, bank, "IBAN: QA88BNPA000669109329300160USD")

	// Empty bank details render blank, not a block of empty labels.
	assert.Equal(t, "", Resolve(&document.Record{}, BankSummaryKey, ""))

	words := Resolve(rec, AmountInWordsKey, "")
	assert.Contains(t, words, "US DOLLARS")
	assert.Contains(t, words, "TEN THOUSAND ONE HUNDRED")

	// amountInWords tracks live edits to the record.
	rec.SetLineRate(1, 1050)
	assert.Contains(t, Resolve(rec, AmountInWordsKey, ""), "TEN THOUSAND ONE HUNDRED FIFTY")
}

func TestIsMonetaryPath(t *testing.T) {
	assert.True(t, IsMonetaryPath("grandTotal"))
	assert.True(t, IsMonetaryPath("summary.0.rate"))
	assert.True(t, IsMonetaryPath("summary.3.total"))
	assert.False(t, IsMonetaryPath("metadata.vendorName"))
	assert.False(t, IsMonetaryPath("summary.0.quantity"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "250.00", FormatAmount(250))
	assert.Equal(t, "15,420.50", FormatAmount(15420.5))
	assert.Equal(t, "1,234,567.89", FormatAmount(1234567.89))
}
