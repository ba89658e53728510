package binding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inkform/docpress/internal/document"
)

// TableHeader is the line-item column header shared by the editor preview
// and the PDF renderer. Quantity and unit share one column, printed as
// "2 Day" in a single cell.
var TableHeader = []string{"DESCRIPTION", "QTY", "RATE", "TOTAL"}

// TableRows formats a record's line items into display cells: quantity and
// unit combined, rates and totals with monetary formatting. Preview and
// print both call this, so the two can never disagree on a cell.
func TableRows(rec *document.Record) [][]string {
	if rec == nil {
		return nil
	}
	rows := make([][]string, 0, len(rec.Summary))
	for _, line := range rec.Summary {
		rows = append(rows, []string{
			line.Description,
			strings.TrimSpace(FormatQuantity(line.Quantity) + " " + line.Unit),
			FormatAmount(line.Rate),
			FormatAmount(line.Total),
		})
	}
	return rows
}

// FormatQuantity renders a quantity without trailing decimal noise.
func FormatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return strconv.FormatInt(int64(q), 10)
	}
	return fmt.Sprintf("%g", q)
}
