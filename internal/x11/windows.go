package x11

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowGeometry is a window's outer rectangle in root coordinates,
// including window manager decorations when they are advertised.
type WindowGeometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get active window: %w", err)
	}
	if win == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return win, nil
}

// GetWindowGeometry returns the frame-inclusive geometry of a client window.
func (c *Connection) GetWindowGeometry(windowID xproto.Window) (WindowGeometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return WindowGeometry{}, fmt.Errorf("failed to get geometry for window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return WindowGeometry{}, fmt.Errorf("failed to translate coordinates for window %d: %w", windowID, err)
	}

	left, right, top, bottom := c.GetFrameExtents(windowID)

	return WindowGeometry{
		X:      int(translate.DstX) - left,
		Y:      int(translate.DstY) - top,
		Width:  int(geom.Width) + left + right,
		Height: int(geom.Height) + top + bottom,
	}, nil
}

// GetFrameExtents returns the window decoration sizes (zeros when unknown).
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// IsMaximizedOrFullscreen reports whether the window is fullscreen or
// maximized in both directions.
func (c *Connection) IsMaximizedOrFullscreen(windowID xproto.Window) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, fmt.Errorf("failed to get window state: %w", err)
	}

	hasMaxH := false
	hasMaxV := false
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_FULLSCREEN":
			return true, nil
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			hasMaxH = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			hasMaxV = true
		}
	}
	return hasMaxH && hasMaxV, nil
}

// GetWindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) GetWindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// GetProcessName resolves the owning process name through _NET_WM_PID and
// /proc. Falls back to the WM_CLASS class when the PID is unavailable.
func (c *Connection) GetProcessName(windowID xproto.Window) string {
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil && pid > 0 {
		if name := processName(int(pid)); name != "" {
			return name
		}
	}
	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(wmClass.Instance)
	}
	return ""
}

func processName(pid int) string {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/comm")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
