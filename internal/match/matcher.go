// Package match proposes billing rates for extracted documents by
// comparing the document's reference string against a rate catalog.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/inkform/docpress/internal/document"
)

// DefaultSimilarityThreshold accepts only near-duplicate references.
// The value is empirically chosen; override it through Config rather than
// editing call sites.
const DefaultSimilarityThreshold = 0.97

// DefaultOvertimeKeywords flag a line item as overtime when any of them
// appears in its description.
var DefaultOvertimeKeywords = []string{"overtime", "ot", "o.t"}

// Rate is one row of the rate catalog.
type Rate struct {
	ID          string  `json:"id,omitempty"`
	ReferenceNo string  `json:"reference_no"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Rate        float64 `json:"rate"`
	OTRate      float64 `json:"ot_rate,omitempty"`
	Currency    string  `json:"currency"`
}

// Matcher finds candidate rates for a document reference and applies a
// chosen set of rates to a record's line items.
type Matcher struct {
	threshold        float64
	overtimeKeywords []string
}

// New creates a Matcher with the given similarity threshold and overtime
// keyword list. Zero values fall back to the defaults.
func New(threshold float64, overtimeKeywords []string) *Matcher {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if len(overtimeKeywords) == 0 {
		overtimeKeywords = DefaultOvertimeKeywords
	}
	return &Matcher{threshold: threshold, overtimeKeywords: overtimeKeywords}
}

// FindCandidates returns every catalog rate whose reference matches the
// document reference: exact case-insensitive equality, substring
// containment in either direction, or a similarity score at or above the
// threshold. All candidates are returned; reference strings are short and
// collisions are plausible, so the choice belongs to the user.
func (m *Matcher) FindCandidates(docRef string, catalog []Rate) []Rate {
	ref := strings.ToLower(strings.TrimSpace(docRef))
	if ref == "" {
		return nil
	}

	var candidates []Rate
	for _, r := range catalog {
		catRef := strings.ToLower(strings.TrimSpace(r.ReferenceNo))
		if catRef == "" {
			continue
		}
		switch {
		case catRef == ref:
			candidates = append(candidates, r)
		case strings.Contains(ref, catRef) || strings.Contains(catRef, ref):
			candidates = append(candidates, r)
		case Similarity(ref, catRef) >= m.threshold:
			candidates = append(candidates, r)
		}
	}
	return candidates
}

// Apply writes the chosen rates into the record's line items. A line
// takes a rate whose description it contains; overtime lines take the
// overtime rate when it is present and positive, the base rate otherwise.
// Totals are recomputed and the matched currency, if any, overrides the
// record's. It returns the number of lines updated.
func (m *Matcher) Apply(rec *document.Record, rates []Rate) int {
	if rec == nil || len(rates) == 0 {
		return 0
	}

	applied := 0
	for i := range rec.Summary {
		line := &rec.Summary[i]
		desc := strings.ToLower(line.Description)

		for _, r := range rates {
			if r.Description == "" || !strings.Contains(desc, strings.ToLower(r.Description)) {
				continue
			}
			rate := r.Rate
			if m.isOvertime(desc) && r.OTRate > 0 {
				rate = r.OTRate
			}
			line.Rate = rate
			if r.Unit != "" {
				line.Unit = r.Unit
			}
			applied++
			break
		}
	}

	// Totals must never be left stale after a rate is applied.
	rec.Recalc()

	if rates[0].Currency != "" {
		rec.Currency = rates[0].Currency
		rec.Metadata.Currency = rates[0].Currency
	}
	return applied
}

func (m *Matcher) isOvertime(desc string) bool {
	for _, kw := range m.overtimeKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// Similarity is a normalized Levenshtein ratio in [0,1]; 1 means equal.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
