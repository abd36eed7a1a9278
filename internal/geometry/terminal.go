// Package geometry converts terminal character-cell layouts and focused
// window bounds into the pixel rectangles that overlay surfaces cover.
package geometry

import "github.com/1broseidon/focusdim/internal/platform"

// TerminalGeometry maps character cells to window-relative pixels.
type TerminalGeometry struct {
	FontWidth   int
	FontHeight  int
	PaddingLeft int
	PaddingTop  int
}

// Valid reports whether the cell size is usable.
func (g TerminalGeometry) Valid() bool {
	return g.FontWidth > 0 && g.FontHeight > 0
}

// PaneInfo is a tmux pane inside its window, in character cells.
// PaneRight and PaneBottom are inclusive, as tmux reports them.
type PaneInfo struct {
	PaneLeft     int
	PaneTop      int
	PaneRight    int
	PaneBottom   int
	WindowWidth  int
	WindowHeight int
}

// Valid reports whether the pane lies inside its window.
func (p PaneInfo) Valid() bool {
	if p.PaneLeft < 0 || p.PaneTop < 0 || p.PaneRight < 0 || p.PaneBottom < 0 {
		return false
	}
	if p.WindowWidth <= 0 || p.WindowHeight <= 0 {
		return false
	}
	if p.PaneRight < p.PaneLeft || p.PaneBottom < p.PaneTop {
		return false
	}
	return p.PaneRight < p.WindowWidth && p.PaneBottom < p.WindowHeight
}

// OverlayRect is an absolute screen rectangle with exclusive right/bottom.
type OverlayRect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns Right-Left.
func (r OverlayRect) Width() int { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r OverlayRect) Height() int { return r.Bottom - r.Top }

// Valid reports whether the rectangle has positive area.
func (r OverlayRect) Valid() bool { return r.Width() > 0 && r.Height() > 0 }

// Rect converts to the platform rectangle representation.
func (r OverlayRect) Rect() platform.Rect {
	return platform.RectFromEdges(r.Left, r.Top, r.Right, r.Bottom)
}

// ColToX returns the window-relative x of the left edge of a column.
func (g TerminalGeometry) ColToX(col int) int {
	return g.PaddingLeft + col*g.FontWidth
}

// RowToY returns the window-relative y of the top edge of a row.
func (g TerminalGeometry) RowToY(row int) int {
	return g.PaddingTop + row*g.FontHeight
}

// XToCol returns the column containing a window-relative x. Pixels inside
// the left padding map to column 0.
func (g TerminalGeometry) XToCol(x int) int {
	if g.FontWidth <= 0 || x <= g.PaddingLeft {
		return 0
	}
	return (x - g.PaddingLeft) / g.FontWidth
}

// YToRow returns the row containing a window-relative y. Pixels inside the
// top padding map to row 0.
func (g TerminalGeometry) YToRow(y int) int {
	if g.FontHeight <= 0 || y <= g.PaddingTop {
		return 0
	}
	return (y - g.PaddingTop) / g.FontHeight
}

// CalculateOverlayRects returns the regions of a terminal window outside the
// active pane, in order top, bottom, left, right. Rectangles with no area are
// omitted; consumers that reuse surfaces across frames rely on the order.
func CalculateOverlayRects(pane PaneInfo, window platform.Rect, geom TerminalGeometry) []OverlayRect {
	if !pane.Valid() || !geom.Valid() {
		return nil
	}

	active := OverlayRect{
		Left:   window.X + geom.ColToX(pane.PaneLeft),
		Top:    window.Y + geom.RowToY(pane.PaneTop),
		Right:  window.X + geom.ColToX(pane.PaneRight+1),
		Bottom: window.Y + geom.RowToY(pane.PaneBottom+1),
	}
	content := OverlayRect{
		Left:   window.X + geom.PaddingLeft,
		Top:    window.Y + geom.PaddingTop,
		Right:  window.X + geom.ColToX(pane.WindowWidth),
		Bottom: window.Y + geom.RowToY(pane.WindowHeight),
	}

	candidates := []OverlayRect{
		{Left: content.Left, Top: content.Top, Right: content.Right, Bottom: active.Top},
		{Left: content.Left, Top: active.Bottom, Right: content.Right, Bottom: content.Bottom},
		{Left: content.Left, Top: active.Top, Right: active.Left, Bottom: active.Bottom},
		{Left: active.Right, Top: active.Top, Right: content.Right, Bottom: active.Bottom},
	}

	rects := make([]OverlayRect, 0, len(candidates))
	for _, r := range candidates {
		if r.Valid() {
			rects = append(rects, r)
		}
	}
	return rects
}
