package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMMRoundTrip(t *testing.T) {
	values := []float64{0, 1, 20, 99.5, 397, 794, 1123}
	for _, v := range values {
		got := FromMM(ToMM(v))
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{14.9, 10},
		{15, 20},
		{-4, 0},
		{-6, -10},
		{123, 120},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Snap(tt.in), "Snap(%v)", tt.in)
	}
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, float64(MinElementSize), ClampSize(0))
	assert.Equal(t, float64(MinElementSize), ClampSize(19.99))
	assert.Equal(t, float64(MinElementSize), ClampSize(-50))
	assert.Equal(t, 20.0, ClampSize(20))
	assert.Equal(t, 21.0, ClampSize(21))
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, ZoomMin, ClampZoom(0))
	assert.Equal(t, ZoomMax, ClampZoom(3))
	assert.Equal(t, 0.7, ClampZoom(0.7))
}

func TestScreenToPage(t *testing.T) {
	// A 70px delta at 0.7 zoom is 100 page units.
	assert.InDelta(t, 100, ScreenToPage(70, 0.7), 1e-9)
	// Zero zoom must not divide by zero.
	assert.Equal(t, 42.0, ScreenToPage(42, 0))
	assert.InDelta(t, 70, PageToScreen(100, 0.7), 1e-9)
}
