package document

import "sort"

// typePriority fixes the paint order across both renderers: boxes first so
// they never cover foreground content, then images, tables, and text.
var typePriority = map[ElementType]int{
	ElementBox:   0,
	ElementImage: 1,
	ElementTable: 2,
	ElementText:  3,
}

// RenderOrder returns the elements sorted for rendering: by type priority
// (box < image < table < text), then by ascending vertical position. The
// sort is stable, so insertion order breaks remaining ties and re-running
// it always yields the same draw order. The input slice is not modified.
func RenderOrder(elements []Element) []Element {
	sorted := make([]Element, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, ok := typePriority[sorted[i].Type]
		if !ok {
			pi = 2
		}
		pj, ok := typePriority[sorted[j].Type]
		if !ok {
			pj = 2
		}
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Y < sorted[j].Y
	})
	return sorted
}
