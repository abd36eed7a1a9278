package overlay

import (
	"errors"
	"fmt"

	"github.com/1broseidon/focusdim/internal/platform"
)

type fakeSurface struct {
	spec      SurfaceSpec
	bounds    platform.Rect
	shown     bool
	destroyed bool
	moves     int
}

type fakeDriver struct {
	next      SurfaceID
	surfaces  map[SurfaceID]*fakeSurface
	ops       []string
	atomic    int
	inAtomic  bool
	failMove  bool
	failAfter int // fail Create once this many surfaces exist; 0 disables
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{surfaces: map[SurfaceID]*fakeSurface{}}
}

func (d *fakeDriver) Create(spec SurfaceSpec) (SurfaceID, error) {
	if d.failAfter > 0 && len(d.live()) >= d.failAfter {
		return 0, errors.New("create rejected")
	}
	d.next++
	d.surfaces[d.next] = &fakeSurface{spec: spec, bounds: spec.Bounds}
	d.ops = append(d.ops, fmt.Sprintf("create %s %d", spec.Category, spec.DisplayID))
	return d.next, nil
}

func (d *fakeDriver) get(id SurfaceID) (*fakeSurface, error) {
	s, ok := d.surfaces[id]
	if !ok || s.destroyed {
		return nil, fmt.Errorf("surface %d does not exist", id)
	}
	return s, nil
}

func (d *fakeDriver) Move(id SurfaceID, bounds platform.Rect) error {
	if d.failMove {
		return errors.New("move rejected")
	}
	s, err := d.get(id)
	if err != nil {
		return err
	}
	s.bounds = bounds
	s.moves++
	op := fmt.Sprintf("move %d", id)
	if d.inAtomic {
		op += " atomic"
	}
	d.ops = append(d.ops, op)
	return nil
}

func (d *fakeDriver) Show(id SurfaceID) error {
	s, err := d.get(id)
	if err != nil {
		return err
	}
	s.shown = true
	return nil
}

func (d *fakeDriver) Hide(id SurfaceID) error {
	s, err := d.get(id)
	if err != nil {
		return err
	}
	s.shown = false
	return nil
}

func (d *fakeDriver) Destroy(id SurfaceID) error {
	s, err := d.get(id)
	if err != nil {
		return err
	}
	s.destroyed = true
	s.shown = false
	d.ops = append(d.ops, fmt.Sprintf("destroy %d", id))
	return nil
}

func (d *fakeDriver) Atomic(fn func() error) error {
	d.atomic++
	d.inAtomic = true
	defer func() { d.inAtomic = false }()
	return fn()
}

func (d *fakeDriver) live() []*fakeSurface {
	var out []*fakeSurface
	for _, s := range d.surfaces {
		if !s.destroyed {
			out = append(out, s)
		}
	}
	return out
}

func (d *fakeDriver) liveOf(c Category) []*fakeSurface {
	var out []*fakeSurface
	for _, s := range d.live() {
		if s.spec.Category == c {
			out = append(out, s)
		}
	}
	return out
}

func (d *fakeDriver) onDisplay(c Category, displayID int) *fakeSurface {
	for _, s := range d.liveOf(c) {
		if s.spec.DisplayID == displayID {
			return s
		}
	}
	return nil
}
