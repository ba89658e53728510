// Package render turns a template plus a document record into a positioned
// PDF. Geometry comes straight from the template's page units converted to
// millimeters; no layout decisions are made here, so the output matches the
// editor preview exactly.
package render

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	gofpdf "github.com/lvillar/gofpdf"
	"github.com/lvillar/gofpdf/table"
	"go.uber.org/zap"

	"github.com/inkform/docpress/internal/binding"
	"github.com/inkform/docpress/internal/document"
	"github.com/inkform/docpress/internal/geom"
)

const fontFamily = "Helvetica"

// defaultFontSize applies when an element has no style or a zero size,
// in page units.
const defaultFontSize = 12

// Renderer produces PDFs from templates. It is safe for concurrent use;
// every Render call builds its own document.
type Renderer struct {
	log    *zap.Logger
	client *http.Client
}

// New creates a Renderer. A nil logger disables logging.
func New(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		log:    log,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Render draws the template's elements resolved against the record and
// returns the finished PDF. Identical inputs produce identical layouts;
// the function touches no state outside the returned buffer.
func (r *Renderer) Render(tmpl *document.Template, rec *document.Record) ([]byte, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("render: nil template")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(tmpl.Name, true)
	pdf.AddPage()

	for _, el := range document.RenderOrder(tmpl.Elements) {
		// Absolute positioning always targets the first page; only a
		// table may spill onto continuation pages.
		pdf.SetPage(1)

		switch el.Type {
		case document.ElementBox:
			r.drawBox(pdf, el)
		case document.ElementImage:
			r.drawImage(pdf, el)
		case document.ElementTable:
			if err := r.drawTable(pdf, el, rec); err != nil {
				return nil, fmt.Errorf("render: table %s: %w", el.ID, err)
			}
		case document.ElementText:
			r.drawText(pdf, el, rec)
		default:
			r.log.Warn("skipping element of unknown type",
				zap.String("id", el.ID), zap.String("type", string(el.Type)))
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: writing output: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderToFile renders and writes the PDF into dir, named after the
// record's invoice number. It returns the full path written.
func (r *Renderer) RenderToFile(tmpl *document.Template, rec *document.Record, dir string) (string, error) {
	out, err := r.Render(tmpl, rec)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, document.PDFFileName(rec))
	if err := os.WriteFile(path, out, 0o640); err != nil {
		return "", fmt.Errorf("render: writing %s: %w", path, err)
	}
	r.log.Info("rendered pdf",
		zap.String("path", path),
		zap.Int("bytes", len(out)),
		zap.Int("elements", len(tmpl.Elements)))
	return path, nil
}

func (r *Renderer) drawBox(pdf *gofpdf.Fpdf, el document.Element) {
	fill := rgb{250, 250, 250}
	if el.Style != nil {
		if c, ok := parseHexColor(el.Style.BackgroundColor); ok {
			fill = c
		}
	}
	pdf.SetFillColor(fill.r, fill.g, fill.b)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(geom.ToMM(el.X), geom.ToMM(el.Y), geom.ToMM(el.Width), geom.ToMM(el.Height), "FD")
	pdf.SetDrawColor(0, 0, 0)
}

func (r *Renderer) drawText(pdf *gofpdf.Fpdf, el document.Element, rec *document.Record) {
	text := binding.Resolve(rec, el.Binding, el.Content)
	if text == "" {
		return
	}

	size := float64(defaultFontSize)
	styleStr := ""
	color := rgb{0, 0, 0}
	align := "L"
	underline := false
	if s := el.Style; s != nil {
		if s.FontSize > 0 {
			size = s.FontSize
		}
		if s.FontWeight == "bold" {
			styleStr += "B"
		}
		if s.FontStyle == "italic" {
			styleStr += "I"
		}
		underline = s.TextDecoration == "underline"
		if c, ok := parseHexColor(s.Color); ok {
			color = c
		}
		switch s.Align {
		case "center":
			align = "C"
		case "right":
			align = "R"
		}
	}

	pts := size * geom.FontScale
	x, y := geom.ToMM(el.X), geom.ToMM(el.Y)
	w := geom.ToMM(el.Width)
	lineHeight := pts * 0.5

	pdf.SetFont(fontFamily, styleStr, pts)
	pdf.SetTextColor(color.r, color.g, color.b)
	pdf.SetXY(x, y)
	pdf.MultiCell(w, lineHeight, text, "", align, false)
	if underline {
		r.underlineFirstLine(pdf, text, x, y, w, lineHeight, align, color)
	}
	pdf.SetTextColor(0, 0, 0)
}

// underlineFirstLine rules under the first wrapped line only; headings
// that spill onto a second line keep the continuation bare. The rule is
// shifted to track the cell's alignment.
func (r *Renderer) underlineFirstLine(pdf *gofpdf.Fpdf, text string, x, y, w, lineHeight float64, align string, color rgb) {
	first := text
	if lines := pdf.SplitLines([]byte(text), w); len(lines) > 0 {
		first = string(lines[0])
	}
	tw := pdf.GetStringWidth(first)
	if tw > w {
		tw = w
	}
	lx := x
	switch align {
	case "C":
		lx = x + (w-tw)/2
	case "R":
		lx = x + w - tw
	}
	ly := y + lineHeight
	pdf.SetDrawColor(color.r, color.g, color.b)
	pdf.SetLineWidth(0.2)
	pdf.Line(lx, ly, lx+tw, ly)
	pdf.SetDrawColor(0, 0, 0)
}

func (r *Renderer) drawImage(pdf *gofpdf.Fpdf, el document.Element) {
	if el.Content == "" {
		return
	}
	img, err := r.loadImage(el.Content)
	if err != nil {
		// A broken logo must never sink the whole document.
		r.log.Warn("skipping image element",
			zap.String("id", el.ID), zap.Error(err))
		return
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(el.ID, opts, bytes.NewReader(img))
	pdf.ImageOptions(el.ID, geom.ToMM(el.X), geom.ToMM(el.Y),
		geom.ToMM(el.Width), geom.ToMM(el.Height), false, opts, 0, "")
}

func (r *Renderer) drawTable(pdf *gofpdf.Fpdf, el document.Element, rec *document.Record) error {
	tbl := table.New(pdf)
	tbl.SetColumns(
		table.ColumnDef{Align: "L"}, // description auto-fills
		table.ColumnDef{Width: 26, Align: "C"},
		table.ColumnDef{Width: 25, Align: "R"},
		table.ColumnDef{Width: 25, Align: "R"},
	)
	tbl.SetPosition(geom.ToMM(el.X), geom.ToMM(el.Y))
	tbl.SetWidth(geom.ToMM(el.Width))
	tbl.SetStyle(table.TableStyle{
		CellPadding: table.UniformPadding(1.5),
		CellFont:    &table.FontSpec{Family: fontFamily, Size: 8},
		HeaderStyle: &table.CellStyle{
			FillColor: &table.RGBColor{R: 240, G: 240, B: 240},
			TextColor: &table.RGBColor{R: 50, G: 50, B: 50},
			Font:      &table.FontSpec{Family: fontFamily, Style: "B", Size: 8},
		},
	})

	hr := tbl.AddHeaderRow()
	for _, h := range binding.TableHeader {
		hr.AddCell(h)
	}

	for _, row := range binding.TableRows(rec) {
		tr := tbl.AddRow()
		for _, cell := range row {
			tr.AddCell(cell)
		}
	}

	if rec != nil {
		total := tbl.AddRow()
		bold := table.CellStyle{
			Font:  &table.FontSpec{Family: fontFamily, Style: "B", Size: 8},
			Align: "R",
		}
		total.AddCell("GRAND TOTAL").SetColspan(3).SetStyle(bold)
		total.AddCell(binding.FormatAmount(rec.GrandTotal)).SetStyle(bold)
	}

	pdf.SetFont(fontFamily, "", 8)
	return tbl.Render()
}

type rgb struct{ r, g, b int }

// parseHexColor parses #rgb and #rrggbb color strings.
func parseHexColor(s string) (rgb, bool) {
	if len(s) == 0 || s[0] != '#' {
		return rgb{}, false
	}
	hex := s[1:]
	var r, g, b int
	switch len(hex) {
	case 3:
		if n, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); n != 3 || err != nil {
			return rgb{}, false
		}
		return rgb{r * 17, g * 17, b * 17}, true
	case 6:
		if n, err := fmt.Sscanf(hex, "%2x%2x%2x", &r, &g, &b); n != 3 || err != nil {
			return rgb{}, false
		}
		return rgb{r, g, b}, true
	}
	return rgb{}, false
}
