package editor

import (
	"github.com/inkform/docpress/internal/binding"
	"github.com/inkform/docpress/internal/document"
)

// MaxPreviewRows caps how many line items a table element shows in the
// editor canvas. The PDF renderer always prints every row.
const MaxPreviewRows = 5

// ElementView is one element resolved against a record for display.
type ElementView struct {
	Element document.Element
	// Text is the resolved display string for text elements.
	Text string
	// Rows holds formatted line items for table elements, capped at
	// MaxPreviewRows. Omitted counts how many rows the cap hid.
	Rows    [][]string
	Omitted int
}

// Preview resolves the template against a record for canvas display. The
// result is in paint order; the caller draws it front to back as returned.
// Bindings, monetary formatting, and ordering are the same code paths the
// PDF renderer uses, so the preview never disagrees with the print.
func Preview(tmpl *document.Template, rec *document.Record) []ElementView {
	ordered := document.RenderOrder(tmpl.Elements)
	views := make([]ElementView, 0, len(ordered))
	for _, el := range ordered {
		v := ElementView{Element: el}
		switch el.Type {
		case document.ElementText:
			v.Text = binding.Resolve(rec, el.Binding, el.Content)
		case document.ElementTable:
			rows := binding.TableRows(rec)
			if len(rows) > MaxPreviewRows {
				v.Omitted = len(rows) - MaxPreviewRows
				rows = rows[:MaxPreviewRows]
			}
			v.Rows = rows
		}
		views = append(views, v)
	}
	return views
}
