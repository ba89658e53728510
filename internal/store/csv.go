package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inkform/docpress/internal/match"
)

// ImportRatesCSV parses a rate catalog upload. Two layouts are accepted:
//
//	ITP:     ITP No, LOCATION, INSPECTOR, DESIGNATION, Unit, Daily/Hourly Rate, OT Rate
//	generic: reference_no, description, unit, rate[, currency]
//
// The layout is detected from the header row. Rows missing required
// columns are skipped rather than failing the whole import.
func ImportRatesCSV(r io.Reader) ([]match.Rate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: parsing rate csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("store: rate csv has no data rows")
	}

	header := strings.ToLower(strings.Join(records[0], ","))
	isITP := strings.Contains(header, "itp no") || strings.Contains(header, "inspector")

	var rates []match.Rate
	for _, cols := range records[1:] {
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if isITP {
			if len(cols) < 6 || cols[0] == "" {
				continue
			}
			rawOT := ""
			if len(cols) > 6 {
				rawOT = cols[6]
			}
			unit := cols[4]
			if unit == "" {
				unit = "Day"
			}
			rates = append(rates, match.Rate{
				ReferenceNo: cols[0],
				Description: joinDescription(cols[3], cols[2]),
				Unit:        unit,
				Rate:        cleanNum(cols[5]),
				OTRate:      cleanNum(rawOT),
				Currency:    sniffRateCurrency(cols[5]),
			})
		} else {
			if len(cols) < 4 || cols[0] == "" {
				continue
			}
			currency := "USD"
			if len(cols) > 4 && cols[4] != "" {
				currency = cols[4]
			}
			rates = append(rates, match.Rate{
				ReferenceNo: cols[0],
				Description: cols[1],
				Unit:        cols[2],
				Rate:        cleanNum(cols[3]),
				Currency:    currency,
			})
		}
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("store: rate csv yielded no usable rows")
	}
	return rates, nil
}

// joinDescription combines designation and inspector, tolerating either
// being blank.
func joinDescription(designation, inspector string) string {
	s := strings.TrimSuffix(designation+" - "+inspector, " - ")
	return strings.TrimPrefix(s, " - ")
}

// cleanNum parses a money cell, stripping currency symbols and thousands
// separators. Unparseable cells become 0.
func cleanNum(s string) float64 {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// sniffRateCurrency infers the currency from symbols in the rate cell.
func sniffRateCurrency(rawRate string) string {
	switch {
	case strings.Contains(rawRate, "€") || strings.Contains(rawRate, "EUR"):
		return "EUR"
	case strings.Contains(rawRate, "£") || strings.Contains(rawRate, "GBP"):
		return "GBP"
	case strings.Contains(rawRate, "QAR"):
		return "QAR"
	default:
		return "USD"
	}
}
