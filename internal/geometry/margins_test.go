package geometry

import (
	"testing"

	"github.com/1broseidon/focusdim/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarginRects_FourMarginsCoverDisplay(t *testing.T) {
	display := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	window := platform.RectFromEdges(100, 100, 900, 700)

	margins := MarginRects(window, display)
	require.Len(t, margins, 4)

	wantEdges := []Edge{EdgeTop, EdgeBottom, EdgeLeft, EdgeRight}
	area := window.Width * window.Height
	for i, m := range margins {
		assert.Equal(t, wantEdges[i], m.Edge)
		assert.Positive(t, m.Rect.Width, m.Edge.String())
		assert.Positive(t, m.Rect.Height, m.Edge.String())
		area += m.Rect.Width * m.Rect.Height
	}
	assert.Equal(t, display.Width*display.Height, area)

	// Every display pixel sampled is covered exactly once.
	for y := 0; y < display.Height; y += 37 {
		for x := 0; x < display.Width; x += 41 {
			hits := 0
			if window.Contains(x, y) {
				hits++
			}
			for _, m := range margins {
				if m.Rect.Contains(x, y) {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "pixel %d,%d", x, y)
		}
	}
}

func TestMarginRects_EdgeTolerance(t *testing.T) {
	display := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	margins := MarginRects(platform.RectFromEdges(4, 100, 900, 700), display)
	for _, m := range margins {
		assert.NotEqual(t, EdgeLeft, m.Edge)
	}
	assert.Len(t, margins, 3)

	margins = MarginRects(platform.RectFromEdges(6, 100, 900, 700), display)
	assert.Len(t, margins, 4)
}

func TestMarginRects_MaximizedWindowHasNone(t *testing.T) {
	display := platform.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}
	window := platform.Rect{X: 1918, Y: -2, Width: 2564, Height: 1444}
	assert.Empty(t, MarginRects(window, display))
}

func TestMarginRects_OffsetDisplay(t *testing.T) {
	display := platform.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	window := platform.RectFromEdges(1920, 0, 2560, 1024)

	margins := MarginRects(window, display)
	require.Len(t, margins, 1)
	assert.Equal(t, EdgeRight, margins[0].Edge)
	assert.Equal(t, platform.RectFromEdges(2560, 0, 3200, 1024), margins[0].Rect)
}
