package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// NoDisplay is the display ID used when no display is known or focused.
const NoDisplay = -1

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RectFromEdges builds a Rect from left/top/right/bottom edges, right and
// bottom exclusive.
func RectFromEdges(left, top, right, bottom int) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rect covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Display describes a physical display.
//
// IDs are only stable within one topology generation: after a display
// configuration change every previously returned ID must be treated as invalid.
type Display struct {
	ID      int
	Name    string
	Bounds  Rect
	Primary bool
}

// ActiveWindow is a snapshot of the current foreground window.
type ActiveWindow struct {
	ID          WindowID
	DisplayID   int
	ProcessName string
	Title       string
	Bounds      Rect
}

// Backend is the read-only display/window query facade used by the daemon.
// Every call returns quickly or fails; none of them blocks on user input.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (ActiveWindow, error)
	WindowRect(windowID WindowID) (Rect, error)
	IsMaximized(windowID WindowID) (bool, error)
}

// DisplayByID returns the display with the given ID.
func DisplayByID(displays []Display, id int) (Display, bool) {
	for _, d := range displays {
		if d.ID == id {
			return d, true
		}
	}
	return Display{}, false
}

// DisplayForRect returns the ID of the display containing the rect's centre.
func DisplayForRect(displays []Display, r Rect) int {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	for _, d := range displays {
		if d.Bounds.Contains(cx, cy) {
			return d.ID
		}
	}
	return NoDisplay
}
