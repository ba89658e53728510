package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
)

// MaxPreviewChars bounds the extracted-text preview attached to results.
const MaxPreviewChars = 4000

// TextPreview extracts plain text from a PDF for display next to the
// correction form. Scanned image-only PDFs yield an empty string, which is
// fine; the preview is an aid, not a requirement.
func TextPreview(content []byte) (string, error) {
	reader, err := ledongthuc.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract: opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		if sb.Len() >= MaxPreviewChars {
			break
		}
	}

	out := sb.String()
	if len(out) > MaxPreviewChars {
		out = out[:MaxPreviewChars]
	}
	return out, nil
}

var (
	invoiceNoRe = regexp.MustCompile(`(?i)invoice\s*(?:no|number|#)\s*[:.]?\s*([A-Za-z0-9/-]+)`)
	dateRe      = regexp.MustCompile(`\b(\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
	clientRefRe = regexp.MustCompile(`(?i)(?:your|client)\s*ref(?:erence)?\s*[:.]?\s*([A-Za-z0-9 ._/-]+)`)
)

// TextExtractor is a heuristic extractor over the PDF's own text layer.
// It fills the fields a regex can find reliably and leaves the rest for
// the user's correction pass, scoring each found field modestly.
type TextExtractor struct{}

// NewTextExtractor creates the heuristic text-layer extractor.
func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

// Extract implements Extractor.
func (e *TextExtractor) Extract(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := TextPreview(req.Content)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ConfidenceScores: map[string]float64{},
		ExtractedText:    text,
	}

	if m := invoiceNoRe.FindStringSubmatch(text); m != nil {
		res.Data.Metadata.InvoiceNumber = strings.TrimSpace(m[1])
		res.ConfidenceScores["invoiceNumber"] = 0.6
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		res.Data.Metadata.Date = m[1]
		res.ConfidenceScores["date"] = 0.5
	}
	if m := clientRefRe.FindStringSubmatch(text); m != nil {
		res.Data.Metadata.ClientRef = strings.TrimSpace(m[1])
		res.ConfidenceScores["clientRef"] = 0.5
	}
	if cur := SniffCurrency(text); cur != "" {
		res.Data.Currency = cur
		res.ConfidenceScores["currency"] = 0.7
	}

	res.AverageConfidence = averageConfidence(res.ConfidenceScores)
	return res, nil
}

// SniffCurrency guesses the currency from symbols and codes in free text.
func SniffCurrency(text string) string {
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		return "GBP"
	case strings.Contains(text, "QAR") || strings.Contains(text, "Riyal"):
		return "QAR"
	case strings.Contains(text, "USD") || strings.Contains(text, "$"):
		return "USD"
	}
	return ""
}

var _ Extractor = (*TextExtractor)(nil)
