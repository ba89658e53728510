// Package geom defines the page coordinate space shared by the canvas
// editor and the PDF renderer.
//
// All element geometry is stored in page units on a fixed virtual A4 page
// of 794x1123 units (A4 at 96 DPI). The editor scales page units by a
// runtime zoom factor purely for screen display; the PDF renderer scales
// them by a fixed factor to millimeters. Stored geometry is always at
// 1.0x page-unit scale.
package geom

import "math"

const (
	// PageWidth and PageHeight define the virtual page in page units.
	PageWidth  = 794
	PageHeight = 1123

	// UnitToMM converts one page unit to millimeters for print output.
	UnitToMM = 0.2645

	// SnapGrid is the grid pitch applied to drag and resize operations.
	SnapGrid = 10

	// MinElementSize is the floor for element width and height.
	MinElementSize = 20

	// FontScale converts a page-unit font size to a point size.
	FontScale = 0.75

	// ZoomMin and ZoomMax bound the editor's screen-only zoom factor.
	ZoomMin = 0.3
	ZoomMax = 1.5
)

// ToMM converts a page-unit length to millimeters.
func ToMM(units float64) float64 {
	return units * UnitToMM
}

// FromMM converts a millimeter length back to page units.
func FromMM(mm float64) float64 {
	return mm / UnitToMM
}

// Snap rounds a page-unit coordinate to the nearest grid line.
func Snap(v float64) float64 {
	return math.Round(v/SnapGrid) * SnapGrid
}

// ClampSize enforces the minimum element dimension.
func ClampSize(v float64) float64 {
	if v < MinElementSize {
		return MinElementSize
	}
	return v
}

// ClampZoom bounds a requested zoom factor to the editor's supported range.
func ClampZoom(z float64) float64 {
	switch {
	case z < ZoomMin:
		return ZoomMin
	case z > ZoomMax:
		return ZoomMax
	default:
		return z
	}
}

// ScreenToPage converts a screen-pixel delta to page units at the given zoom.
func ScreenToPage(px, zoom float64) float64 {
	if zoom <= 0 {
		return px
	}
	return px / zoom
}

// PageToScreen converts a page-unit length to screen pixels at the given zoom.
func PageToScreen(units, zoom float64) float64 {
	return units * zoom
}
