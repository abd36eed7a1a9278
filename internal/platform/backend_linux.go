//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/focusdim/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop drains events and asynchronous errors on the backend connection.
// It blocks until Disconnect.
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveWindow returns a snapshot of the focused window.
func (b *LinuxBackend) ActiveWindow() (ActiveWindow, error) {
	conn, err := b.connection()
	if err != nil {
		return ActiveWindow{}, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return ActiveWindow{}, err
	}

	geom, err := conn.GetWindowGeometry(wid)
	if err != nil {
		return ActiveWindow{}, err
	}
	bounds := rectFromGeometry(geom)

	displays, err := b.Displays()
	if err != nil {
		return ActiveWindow{}, err
	}

	return ActiveWindow{
		ID:          WindowID(wid),
		DisplayID:   DisplayForRect(displays, bounds),
		ProcessName: conn.GetProcessName(wid),
		Title:       conn.GetWindowTitle(wid),
		Bounds:      bounds,
	}, nil
}

// WindowRect returns the frame-inclusive bounds of a window.
func (b *LinuxBackend) WindowRect(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	geom, err := conn.GetWindowGeometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return rectFromGeometry(geom), nil
}

// IsMaximized reports whether a window is maximized or fullscreen.
func (b *LinuxBackend) IsMaximized(windowID WindowID) (bool, error) {
	conn, err := b.connection()
	if err != nil {
		return false, err
	}
	return conn.IsMaximizedOrFullscreen(xproto.Window(windowID))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Primary: m.Primary,
	}
}

func rectFromGeometry(g x11.WindowGeometry) Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}
