package daemon

import (
	"errors"
	"sync"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/geometry"
	"github.com/1broseidon/focusdim/internal/overlay"
	"github.com/1broseidon/focusdim/internal/platform"
)

type fakeBackend struct {
	mu         sync.Mutex
	displays   []platform.Display
	displayErr error
	active     platform.ActiveWindow
	activeErr  error
	rects      map[platform.WindowID]platform.Rect
	maximized  map[platform.WindowID]bool
}

func newFakeBackend(displays ...platform.Display) *fakeBackend {
	return &fakeBackend{
		displays:  displays,
		activeErr: errors.New("no active window"),
		rects:     map[platform.WindowID]platform.Rect{},
		maximized: map[platform.WindowID]bool{},
	}
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.displayErr != nil {
		return nil, b.displayErr
	}
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) ActiveWindow() (platform.ActiveWindow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.activeErr != nil {
		return platform.ActiveWindow{}, b.activeErr
	}
	return b.active, nil
}

func (b *fakeBackend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rects[id]
	if !ok {
		return platform.Rect{}, errors.New("bad window")
	}
	return r, nil
}

func (b *fakeBackend) IsMaximized(id platform.WindowID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maximized[id], nil
}

func (b *fakeBackend) setDisplays(displays ...platform.Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displays = displays
}

func (b *fakeBackend) setDisplayErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displayErr = err
}

// focus makes a window the focused one at rect.
func (b *fakeBackend) focus(id platform.WindowID, title string, rect platform.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeErr = nil
	b.active = platform.ActiveWindow{
		ID:          id,
		DisplayID:   platform.DisplayForRect(b.displays, rect),
		ProcessName: "app",
		Title:       title,
		Bounds:      rect,
	}
	b.rects[id] = rect
}

// move changes a window's rect without a focus change.
func (b *fakeBackend) move(id platform.WindowID, rect platform.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rects[id] = rect
	if b.active.ID == id {
		b.active.Bounds = rect
		b.active.DisplayID = platform.DisplayForRect(b.displays, rect)
	}
}

func (b *fakeBackend) setMaximized(id platform.WindowID, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maximized[id] = v
}

type recSurface struct {
	spec      overlay.SurfaceSpec
	bounds    platform.Rect
	shown     bool
	destroyed bool
}

type recordingDriver struct {
	mu       sync.Mutex
	next     overlay.SurfaceID
	surfaces map[overlay.SurfaceID]*recSurface
	atomic   int
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{surfaces: map[overlay.SurfaceID]*recSurface{}}
}

func (d *recordingDriver) Create(spec overlay.SurfaceSpec) (overlay.SurfaceID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.surfaces[d.next] = &recSurface{spec: spec, bounds: spec.Bounds}
	return d.next, nil
}

func (d *recordingDriver) Move(id overlay.SurfaceID, bounds platform.Rect) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surfaces[id].bounds = bounds
	return nil
}

func (d *recordingDriver) Show(id overlay.SurfaceID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surfaces[id].shown = true
	return nil
}

func (d *recordingDriver) Hide(id overlay.SurfaceID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surfaces[id].shown = false
	return nil
}

func (d *recordingDriver) Destroy(id overlay.SurfaceID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.surfaces[id]
	if s.destroyed {
		return errors.New("double destroy")
	}
	s.destroyed = true
	s.shown = false
	return nil
}

func (d *recordingDriver) Atomic(fn func() error) error {
	d.mu.Lock()
	d.atomic++
	d.mu.Unlock()
	return fn()
}

// live returns live surfaces of a category keyed by surface ID.
func (d *recordingDriver) live(c overlay.Category) map[overlay.SurfaceID]recSurface {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[overlay.SurfaceID]recSurface{}
	for id, s := range d.surfaces {
		if !s.destroyed && s.spec.Category == c {
			out[id] = *s
		}
	}
	return out
}

func (d *recordingDriver) liveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.surfaces {
		if !s.destroyed {
			n++
		}
	}
	return n
}

// on returns the live surface of a category on a display.
func (d *recordingDriver) on(c overlay.Category, displayID int) (recSurface, bool) {
	for _, s := range d.live(c) {
		if s.spec.DisplayID == displayID {
			return s, true
		}
	}
	return recSurface{}, false
}

func (d *recordingDriver) anyShown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.surfaces {
		if !s.destroyed && s.shown {
			return true
		}
	}
	return false
}

type fakePanes struct {
	mu    sync.Mutex
	info  geometry.PaneInfo
	valid bool
}

func (p *fakePanes) Latest() (geometry.PaneInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info, p.valid
}

func (p *fakePanes) set(info geometry.PaneInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.info = info
	p.valid = info.Valid()
}

type harness struct {
	backend *fakeBackend
	driver  *recordingDriver
	manager *overlay.Manager
	orch    *Orchestrator
}

func newHarness(cfg *config.Config, panes PaneSource, displays ...platform.Display) *harness {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	b := newFakeBackend(displays...)
	d := newRecordingDriver()
	m := overlay.NewManager(d, cfg.InactiveColor, cfg.EffectiveActiveColor(), nil)
	o := New(Options{
		Backend:  b,
		Overlays: m,
		Config:   cfg,
		Panes:    panes,
	})
	return &harness{backend: b, driver: d, manager: m, orch: o}
}
