// Package extract turns uploaded scans into document records. An Extractor
// produces raw field data with per-field confidence; the Queue runs
// extractions concurrently and merges results with a template into
// render-ready records.
package extract

import (
	"context"

	"github.com/inkform/docpress/internal/document"
)

// Request is one uploaded file to extract.
type Request struct {
	FileName string
	Kind     document.DocumentKind
	Content  []byte
}

// Result is the raw output of an extraction before template merge.
type Result struct {
	Data              document.Record    `json:"data"`
	ConfidenceScores  map[string]float64 `json:"confidence_scores,omitempty"`
	AverageConfidence float64            `json:"average_confidence"`
	ExtractedText     string             `json:"extracted_text,omitempty"`
}

// Extractor pulls structured fields out of a scanned document.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Result, error)
}

// averageConfidence folds per-field scores into one number for display.
func averageConfidence(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}
