package overlay

import (
	"strings"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/platform"
)

// Category identifies one independently managed set of overlay surfaces.
type Category int

const (
	CategoryInactive Category = iota
	CategoryActive
	CategoryPartial
	CategoryTmux
)

// TitlePrefix starts the window title of every surface this package creates.
const TitlePrefix = "focusdim-"

// WindowClass is the WM_CLASS class shared by all overlay surfaces.
const WindowClass = "FocusdimOverlay"

func (c Category) String() string {
	switch c {
	case CategoryInactive:
		return "inactive"
	case CategoryActive:
		return "active"
	case CategoryPartial:
		return "partial"
	case CategoryTmux:
		return "tmux"
	default:
		return "unknown"
	}
}

// Title is the unique window title used for surfaces of this category.
func (c Category) Title() string {
	return TitlePrefix + c.String()
}

// IsOwnTitle reports whether a window title belongs to an overlay surface.
func IsOwnTitle(title string) bool {
	return strings.HasPrefix(title, TitlePrefix)
}

// SurfaceID is a driver-assigned surface handle.
type SurfaceID uint32

// SurfaceSpec describes a surface to create. The color is fixed at creation;
// only Move can change the bounds afterwards.
type SurfaceSpec struct {
	Category  Category
	DisplayID int
	Bounds    platform.Rect
	Color     config.Color
}

// Driver creates and manipulates borderless, click-through, always-on-top
// surfaces. New surfaces start hidden.
type Driver interface {
	Create(spec SurfaceSpec) (SurfaceID, error)
	Move(id SurfaceID, bounds platform.Rect) error
	Show(id SurfaceID) error
	Hide(id SurfaceID) error
	Destroy(id SurfaceID) error
	// Atomic runs fn so that every change it makes becomes visible at once.
	Atomic(fn func() error) error
}
