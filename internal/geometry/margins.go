package geometry

import "github.com/1broseidon/focusdim/internal/platform"

// EdgeTolerance is how close (in pixels) a window edge may be to a display
// edge and still count as touching it. Covers drop shadows and DPI rounding.
const EdgeTolerance = 5

// Edge names one side of the focused window.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Margin is the display area on one side of the focused window.
type Margin struct {
	Edge Edge
	Rect platform.Rect
}

// MarginRects returns the display regions around a window, ordered top,
// bottom, left, right. Top and bottom span the full display width; left and
// right span only the window's vertical extent. An edge within
// EdgeTolerance of the display edge produces no margin.
func MarginRects(window, display platform.Rect) []Margin {
	if window.Empty() || display.Empty() {
		return nil
	}

	top := clamp(window.Y, display.Y, display.Bottom())
	bottom := clamp(window.Bottom(), display.Y, display.Bottom())
	left := clamp(window.X, display.X, display.Right())
	right := clamp(window.Right(), display.X, display.Right())

	var margins []Margin

	if top-display.Y > EdgeTolerance {
		margins = append(margins, Margin{
			Edge: EdgeTop,
			Rect: platform.RectFromEdges(display.X, display.Y, display.Right(), top),
		})
	}
	if display.Bottom()-bottom > EdgeTolerance {
		margins = append(margins, Margin{
			Edge: EdgeBottom,
			Rect: platform.RectFromEdges(display.X, bottom, display.Right(), display.Bottom()),
		})
	}
	if bottom > top {
		if left-display.X > EdgeTolerance {
			margins = append(margins, Margin{
				Edge: EdgeLeft,
				Rect: platform.RectFromEdges(display.X, top, left, bottom),
			})
		}
		if display.Right()-right > EdgeTolerance {
			margins = append(margins, Margin{
				Edge: EdgeRight,
				Rect: platform.RectFromEdges(right, top, display.Right(), bottom),
			})
		}
	}

	return margins
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
