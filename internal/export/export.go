// Package export turns processed records into downloadable artifacts: a
// line-item CSV and a ZIP of rendered PDFs for a whole batch. Every PDF is
// structurally validated before it leaves the system.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/inkform/docpress/internal/binding"
	"github.com/inkform/docpress/internal/document"
	"github.com/inkform/docpress/internal/render"
)

// csvHeader is the column layout of the line-item export. One row per line
// item; document-level fields repeat on each of its rows.
var csvHeader = []string{
	"File", "Invoice No", "Date", "Client",
	"Description", "Qty", "Unit", "Rate", "Total",
	"Currency", "Grand Total",
}

// RecordsCSV renders records as CSV, one row per line item. A record with
// no line items still gets one row so it is visible in the export.
func RecordsCSV(records []*document.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export: writing csv header: %w", err)
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		base := []string{
			rec.OriginalFileName,
			rec.Metadata.InvoiceNumber,
			rec.Metadata.Date,
			rec.Metadata.ClientName,
		}
		tail := []string{rec.Currency, binding.FormatAmount(rec.GrandTotal)}

		if len(rec.Summary) == 0 {
			row := append(append(append([]string{}, base...), "", "", "", ""), tail...)
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("export: writing csv row: %w", err)
			}
			continue
		}
		for _, line := range rec.Summary {
			row := append(append(append([]string{}, base...),
				line.Description,
				binding.FormatQuantity(line.Quantity),
				line.Unit,
				binding.FormatAmount(line.Rate),
				binding.FormatAmount(line.Total),
			), tail...)
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("export: writing csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// BatchFileName names the download for a batch of one document kind, for
// example "invoice_batch_2026-09-01.zip".
func BatchFileName(kind document.DocumentKind, now time.Time) string {
	return fmt.Sprintf("%s_batch_%s.zip", kind, now.Format("2006-01-02"))
}

// File is one entry destined for a batch archive.
type File struct {
	Name string
	Data []byte
}

// Batcher renders and validates PDFs for batch download.
type Batcher struct {
	renderer *render.Renderer
	log      *zap.Logger
}

// NewBatcher wires a renderer into the export path. A nil logger is
// replaced with a no-op one.
func NewBatcher(renderer *render.Renderer, log *zap.Logger) *Batcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Batcher{renderer: renderer, log: log}
}

// RenderBatch renders every record against the template and validates each
// PDF. Duplicate file names get a numeric suffix so no archive entry
// silently overwrites another.
func (b *Batcher) RenderBatch(tmpl *document.Template, records []*document.Record) ([]File, error) {
	files := make([]File, 0, len(records))
	seen := make(map[string]int, len(records))

	for _, rec := range records {
		if rec == nil {
			continue
		}
		data, err := b.renderer.Render(tmpl, rec)
		if err != nil {
			return nil, fmt.Errorf("export: rendering %q: %w", rec.Metadata.InvoiceNumber, err)
		}
		if err := ValidatePDF(data); err != nil {
			return nil, fmt.Errorf("export: invalid pdf for %q: %w", rec.Metadata.InvoiceNumber, err)
		}

		name := document.PDFFileName(rec)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s_%d.pdf", document.SafeFileName(rec.Metadata.InvoiceNumber), n+1)
		}
		seen[document.PDFFileName(rec)]++

		files = append(files, File{Name: name, Data: data})
	}
	b.log.Info("rendered batch", zap.Int("files", len(files)))
	return files, nil
}

// WriteZip streams the files into a ZIP archive.
func WriteZip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		entry, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("export: creating zip entry %q: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("export: writing zip entry %q: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: closing zip: %w", err)
	}
	return nil
}

// ValidatePDF checks that data parses as a PDF with at least one page.
func ValidatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("export: reading pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("export: counting pages: %w", err)
	}
	if ctx.PageCount < 1 {
		return fmt.Errorf("export: pdf has no pages")
	}
	return nil
}
