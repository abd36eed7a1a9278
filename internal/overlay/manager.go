package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/geometry"
	"github.com/1broseidon/focusdim/internal/platform"
)

type surface struct {
	id      SurfaceID
	display int
	bounds  platform.Rect
	visible bool // wanted visibility, ignoring suspension
	mapped  bool // visibility as last told to the driver
}

// Counts reports live surfaces per category.
type Counts struct {
	Inactive int `json:"inactive"`
	Active   int `json:"active"`
	Partial  int `json:"partial"`
	Tmux     int `json:"tmux"`
}

// Total returns the number of live surfaces.
func (c Counts) Total() int {
	return c.Inactive + c.Active + c.Partial + c.Tmux
}

// Manager owns every overlay surface. It is not safe for concurrent use; a
// single goroutine drives it.
type Manager struct {
	driver Driver
	logger *slog.Logger

	inactiveColor config.Color
	activeColor   *config.Color

	inactive map[int]*surface
	active   map[int]*surface
	partial  map[int][]*surface
	tmux     []*surface

	activeDisplay int
	suspended     bool
}

// NewManager creates a manager painting with the given colors. A nil active
// color disables active highlighting.
func NewManager(driver Driver, inactive config.Color, active *config.Color, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		driver:        driver,
		logger:        logger,
		inactive:      map[int]*surface{},
		active:        map[int]*surface{},
		partial:       map[int][]*surface{},
		activeDisplay: platform.NoDisplay,
	}
	m.SetColors(inactive, active)
	return m
}

// SetColors changes the paint colors for surfaces created afterwards.
// Existing surfaces keep their color until recreated.
func (m *Manager) SetColors(inactive config.Color, active *config.Color) {
	m.inactiveColor = inactive
	if active != nil {
		c := *active
		m.activeColor = &c
	} else {
		m.activeColor = nil
	}
}

// HasActiveColor reports whether active highlighting can be created.
func (m *Manager) HasActiveColor() bool {
	return m.activeColor != nil
}

// ActiveDisplay returns the display last passed to UpdateVisibility.
func (m *Manager) ActiveDisplay() int {
	return m.activeDisplay
}

// Suspended reports whether HideAll is in effect.
func (m *Manager) Suspended() bool {
	return m.suspended
}

// Counts returns the number of live surfaces per category.
func (m *Manager) Counts() Counts {
	c := Counts{
		Inactive: len(m.inactive),
		Active:   len(m.active),
		Tmux:     len(m.tmux),
	}
	for _, set := range m.partial {
		c.Partial += len(set)
	}
	return c
}

// CreateInactive creates one inactive surface per display that does not have
// one yet.
func (m *Manager) CreateInactive(displays []platform.Display) error {
	for _, d := range displays {
		if _, ok := m.inactive[d.ID]; ok {
			continue
		}
		s, err := m.create(CategoryInactive, d.ID, d.Bounds, m.inactiveColor)
		if err != nil {
			return fmt.Errorf("failed to create inactive overlay for display %d: %w", d.ID, err)
		}
		m.inactive[d.ID] = s
		if err := m.setVisible(s, d.ID != m.activeDisplay); err != nil {
			return err
		}
	}
	return nil
}

// CreateActive creates one active highlight surface per display. It does
// nothing when no active color is configured.
func (m *Manager) CreateActive(displays []platform.Display) error {
	if m.activeColor == nil {
		return nil
	}
	for _, d := range displays {
		if _, ok := m.active[d.ID]; ok {
			continue
		}
		s, err := m.create(CategoryActive, d.ID, d.Bounds, *m.activeColor)
		if err != nil {
			return fmt.Errorf("failed to create active overlay for display %d: %w", d.ID, err)
		}
		m.active[d.ID] = s
		if err := m.setVisible(s, d.ID == m.activeDisplay); err != nil {
			return err
		}
	}
	return nil
}

// RecreateInactive closes and recreates the inactive surfaces.
func (m *Manager) RecreateInactive(displays []platform.Display) error {
	closeErr := m.CloseInactive()
	if err := m.CreateInactive(displays); err != nil {
		return errors.Join(closeErr, err)
	}
	return closeErr
}

// RecreateActive closes and recreates the active surfaces.
func (m *Manager) RecreateActive(displays []platform.Display) error {
	closeErr := m.CloseActive()
	if err := m.CreateActive(displays); err != nil {
		return errors.Join(closeErr, err)
	}
	return closeErr
}

// UpdateVisibility shows every inactive surface except the one on
// activeDisplay and shows only the active surface on activeDisplay.
// NoDisplay shows every inactive surface and hides every active one.
func (m *Manager) UpdateVisibility(activeDisplay int) error {
	m.activeDisplay = activeDisplay

	var errs []error
	for _, id := range sortedKeys(m.inactive) {
		errs = append(errs, m.setVisible(m.inactive[id], id != activeDisplay))
	}
	for _, id := range sortedKeys(m.active) {
		errs = append(errs, m.setVisible(m.active[id], activeDisplay != platform.NoDisplay && id == activeDisplay))
	}
	return errors.Join(errs...)
}

// HideAll unmaps every surface in every category and suspends visibility
// changes until ShowAll.
func (m *Manager) HideAll() error {
	m.suspended = true
	var errs []error
	m.each(func(s *surface) {
		if s.mapped {
			if err := m.driver.Hide(s.id); err != nil {
				errs = append(errs, err)
				return
			}
			s.mapped = false
		}
	})
	return errors.Join(errs...)
}

// ShowAll ends a HideAll and restores each surface's wanted visibility.
func (m *Manager) ShowAll() error {
	m.suspended = false
	var errs []error
	m.each(func(s *surface) {
		errs = append(errs, m.apply(s))
	})
	return errors.Join(errs...)
}

// CloseInactive destroys every inactive surface.
func (m *Manager) CloseInactive() error {
	err := m.destroyMap(m.inactive)
	m.inactive = map[int]*surface{}
	return err
}

// CloseActive destroys every active surface.
func (m *Manager) CloseActive() error {
	err := m.destroyMap(m.active)
	m.active = map[int]*surface{}
	return err
}

// ClosePartial destroys the margin surfaces of one display.
func (m *Manager) ClosePartial(displayID int) error {
	set := m.partial[displayID]
	delete(m.partial, displayID)
	return m.destroyAll(set)
}

// ClearPartial destroys the margin surfaces of every display.
func (m *Manager) ClearPartial() error {
	var errs []error
	for _, id := range sortedKeys(m.partial) {
		errs = append(errs, m.destroyAll(m.partial[id]))
	}
	m.partial = map[int][]*surface{}
	return errors.Join(errs...)
}

// HidePartial hides every margin surface without destroying it.
func (m *Manager) HidePartial() error {
	var errs []error
	for _, id := range sortedKeys(m.partial) {
		for _, s := range m.partial[id] {
			errs = append(errs, m.setVisible(s, false))
		}
	}
	return errors.Join(errs...)
}

// ClearTmux destroys every terminal pane surface.
func (m *Manager) ClearTmux() error {
	err := m.destroyAll(m.tmux)
	m.tmux = nil
	return err
}

// CloseAll destroys every surface in every category. Afterwards the manager
// behaves as if freshly created, apart from its colors and suspension.
func (m *Manager) CloseAll() error {
	err := errors.Join(
		m.CloseInactive(),
		m.CloseActive(),
		m.ClearPartial(),
		m.ClearTmux(),
	)
	m.activeDisplay = platform.NoDisplay
	return err
}

// Close tears down every surface.
func (m *Manager) Close() error {
	return m.CloseAll()
}

// ResizeActive fits the active surface of a display to the focused window.
func (m *Manager) ResizeActive(displayID int, window platform.Rect) error {
	s, ok := m.active[displayID]
	if !ok {
		return nil
	}
	return m.move(s, window)
}

// RestoreActiveFullSize stretches the active surface of a display back over
// the whole display.
func (m *Manager) RestoreActiveFullSize(displayID int, display platform.Rect) error {
	s, ok := m.active[displayID]
	if !ok {
		return nil
	}
	return m.move(s, display)
}

// CreatePartial replaces the margin surfaces of a display with exactly the
// set the window currently needs.
func (m *Manager) CreatePartial(displayID int, window, display platform.Rect) error {
	if err := m.ClosePartial(displayID); err != nil {
		m.logger.Warn("failed to close previous margin overlays", "display", displayID, "error", err)
	}

	margins := geometry.MarginRects(window, display)
	if len(margins) == 0 {
		return nil
	}

	set := make([]*surface, 0, len(margins))
	for _, mg := range margins {
		s, err := m.create(CategoryPartial, displayID, mg.Rect, m.inactiveColor)
		if err != nil {
			// Keep what was created so it is torn down with the set.
			m.partial[displayID] = set
			return fmt.Errorf("failed to create %s margin overlay: %w", mg.Edge, err)
		}
		set = append(set, s)
	}
	m.partial[displayID] = set

	var errs []error
	for _, s := range set {
		errs = append(errs, m.setVisible(s, true))
	}
	return errors.Join(errs...)
}

// UpdatePartial moves the existing margin surfaces of a display in place. It
// reports needsRecreate, without touching any surface, when the number of
// margins the window now needs differs from the number that exist.
func (m *Manager) UpdatePartial(displayID int, window, display platform.Rect) (bool, error) {
	margins, needsRecreate := m.partialPlan(displayID, window, display)
	if needsRecreate {
		return true, nil
	}
	return false, m.movePartial(displayID, margins)
}

// UpdatePartialAndActiveAtomic is UpdatePartial plus a resize of the active
// surface to the window, applied as one batch.
func (m *Manager) UpdatePartialAndActiveAtomic(displayID int, window, display platform.Rect) (bool, error) {
	margins, needsRecreate := m.partialPlan(displayID, window, display)
	if needsRecreate {
		return true, nil
	}
	err := m.driver.Atomic(func() error {
		if err := m.movePartial(displayID, margins); err != nil {
			return err
		}
		return m.ResizeActive(displayID, window)
	})
	return false, err
}

// CreateTmux covers every inactive pane region of the terminal window. Surfaces
// are moved in place when the region count is unchanged.
func (m *Manager) CreateTmux(pane geometry.PaneInfo, window platform.Rect, geom geometry.TerminalGeometry) error {
	rects := geometry.CalculateOverlayRects(pane, window, geom)

	if len(rects) == len(m.tmux) {
		var errs []error
		for i, r := range rects {
			s := m.tmux[i]
			errs = append(errs, m.move(s, r.Rect()), m.setVisible(s, true))
		}
		return errors.Join(errs...)
	}

	if err := m.ClearTmux(); err != nil {
		m.logger.Warn("failed to clear pane overlays", "error", err)
	}
	for _, r := range rects {
		s, err := m.create(CategoryTmux, platform.NoDisplay, r.Rect(), m.inactiveColor)
		if err != nil {
			return fmt.Errorf("failed to create pane overlay: %w", err)
		}
		m.tmux = append(m.tmux, s)
		if err := m.setVisible(s, true); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) partialPlan(displayID int, window, display platform.Rect) ([]geometry.Margin, bool) {
	margins := geometry.MarginRects(window, display)
	return margins, len(margins) != len(m.partial[displayID])
}

func (m *Manager) movePartial(displayID int, margins []geometry.Margin) error {
	set := m.partial[displayID]
	for i, mg := range margins {
		if err := m.move(set[i], mg.Rect); err != nil {
			return fmt.Errorf("failed to move %s margin overlay: %w", mg.Edge, err)
		}
		if err := m.setVisible(set[i], true); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) create(category Category, displayID int, bounds platform.Rect, color config.Color) (*surface, error) {
	id, err := m.driver.Create(SurfaceSpec{
		Category:  category,
		DisplayID: displayID,
		Bounds:    bounds,
		Color:     color,
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("overlay created", "category", category.String(), "display", displayID, "surface", id)
	return &surface{id: id, display: displayID, bounds: bounds}, nil
}

func (m *Manager) move(s *surface, bounds platform.Rect) error {
	if s.bounds == bounds {
		return nil
	}
	if err := m.driver.Move(s.id, bounds); err != nil {
		return fmt.Errorf("failed to move overlay %d: %w", s.id, err)
	}
	s.bounds = bounds
	return nil
}

func (m *Manager) setVisible(s *surface, visible bool) error {
	s.visible = visible
	return m.apply(s)
}

// apply pushes the wanted visibility to the driver unless suspended.
func (m *Manager) apply(s *surface) error {
	want := s.visible && !m.suspended
	if s.mapped == want {
		return nil
	}
	var err error
	if want {
		err = m.driver.Show(s.id)
	} else {
		err = m.driver.Hide(s.id)
	}
	if err != nil {
		return fmt.Errorf("failed to change visibility of overlay %d: %w", s.id, err)
	}
	s.mapped = want
	return nil
}

func (m *Manager) destroyAll(set []*surface) error {
	var errs []error
	for _, s := range set {
		if err := m.driver.Destroy(s.id); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy overlay %d: %w", s.id, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) destroyMap(set map[int]*surface) error {
	list := make([]*surface, 0, len(set))
	for _, id := range sortedKeys(set) {
		list = append(list, set[id])
	}
	return m.destroyAll(list)
}

func (m *Manager) each(fn func(*surface)) {
	for _, id := range sortedKeys(m.inactive) {
		fn(m.inactive[id])
	}
	for _, id := range sortedKeys(m.active) {
		fn(m.active[id])
	}
	for _, id := range sortedKeys(m.partial) {
		for _, s := range m.partial[id] {
			fn(s)
		}
	}
	for _, s := range m.tmux {
		fn(s)
	}
}

func sortedKeys[V any](in map[int]V) []int {
	keys := make([]int, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
