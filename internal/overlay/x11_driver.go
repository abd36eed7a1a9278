package overlay

import (
	"fmt"

	"github.com/1broseidon/focusdim/internal/platform"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// X11Driver backs surfaces with override-redirect windows. Opacity is
// applied through _NET_WM_WINDOW_OPACITY, so translucency needs a
// compositing manager; without one surfaces are drawn opaque.
type X11Driver struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var _ Driver = (*X11Driver)(nil)

// NewX11Driver creates a driver on an existing connection. The SHAPE
// extension must already be initialized on it.
func NewX11Driver(xu *xgbutil.XUtil, root xproto.Window) *X11Driver {
	return &X11Driver{xu: xu, root: root}
}

func (d *X11Driver) Create(spec SurfaceSpec) (SurfaceID, error) {
	conn := d.xu.Conn()
	screen := d.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	b := clampBounds(spec.Bounds)
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		d.root,
		int16(b.X), int16(b.Y),
		uint16(b.Width), uint16(b.Height),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		// Value list order follows the mask bit order: back pixel, then override redirect.
		[]uint32{spec.Color.Pixel(), 1},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create overlay window: %w", err)
	}

	if err := d.decorate(wid, spec); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, err
	}
	return SurfaceID(wid), nil
}

func (d *X11Driver) decorate(wid xproto.Window, spec SurfaceSpec) error {
	title := spec.Category.Title()
	if err := ewmh.WmNameSet(d.xu, wid, title); err != nil {
		return fmt.Errorf("failed to set overlay name: %w", err)
	}
	if err := icccm.WmNameSet(d.xu, wid, title); err != nil {
		return fmt.Errorf("failed to set overlay name: %w", err)
	}
	if err := icccm.WmClassSet(d.xu, wid, &icccm.WmClass{Instance: title, Class: WindowClass}); err != nil {
		return fmt.Errorf("failed to set overlay class: %w", err)
	}

	opacity := uint(spec.Color.A * 0xffffffff)
	if err := xprop.ChangeProp32(d.xu, wid, "_NET_WM_WINDOW_OPACITY", "CARDINAL", opacity); err != nil {
		return fmt.Errorf("failed to set overlay opacity: %w", err)
	}

	// An empty input region lets pointer events fall through.
	err := shape.RectanglesChecked(
		d.xu.Conn(),
		shape.SoSet,
		shape.SkInput,
		xproto.ClipOrderingUnsorted,
		wid,
		0, 0,
		nil,
	).Check()
	if err != nil {
		return fmt.Errorf("failed to make overlay click-through: %w", err)
	}
	return nil
}

func (d *X11Driver) Move(id SurfaceID, bounds platform.Rect) error {
	b := clampBounds(bounds)
	return xproto.ConfigureWindowChecked(
		d.xu.Conn(),
		xproto.Window(id),
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(b.X),
			uint32(b.Y),
			uint32(b.Width),
			uint32(b.Height),
			xproto.StackModeAbove,
		},
	).Check()
}

func (d *X11Driver) Show(id SurfaceID) error {
	conn := d.xu.Conn()
	if err := xproto.MapWindowChecked(conn, xproto.Window(id)).Check(); err != nil {
		return err
	}
	return xproto.ConfigureWindowChecked(
		conn,
		xproto.Window(id),
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

func (d *X11Driver) Hide(id SurfaceID) error {
	return xproto.UnmapWindowChecked(d.xu.Conn(), xproto.Window(id)).Check()
}

func (d *X11Driver) Destroy(id SurfaceID) error {
	return xproto.DestroyWindowChecked(d.xu.Conn(), xproto.Window(id)).Check()
}

// Atomic grabs the server while fn runs so a compositor sees all changes in
// one frame.
func (d *X11Driver) Atomic(fn func() error) error {
	conn := d.xu.Conn()
	if err := xproto.GrabServerChecked(conn).Check(); err != nil {
		return fn()
	}
	fnErr := fn()
	xproto.UngrabServer(conn)
	// Round trip so the ungrab is processed before returning.
	if _, err := xproto.GetInputFocus(conn).Reply(); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

func clampBounds(r platform.Rect) platform.Rect {
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}
