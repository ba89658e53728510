package document

import "strings"

// SafeFileName reduces a document reference to a filesystem-safe base name.
// Every run of non-alphanumeric characters collapses to one underscore and
// a blank input becomes "document".
func SafeFileName(s string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.Trim(sb.String(), "_")
	if name == "" {
		return "document"
	}
	return name
}

// PDFFileName names the rendered PDF for a record after its invoice number.
func PDFFileName(rec *Record) string {
	base := ""
	if rec != nil {
		base = rec.Metadata.InvoiceNumber
	}
	return SafeFileName(base) + ".pdf"
}
