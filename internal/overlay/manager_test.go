package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/geometry"
	"github.com/1broseidon/focusdim/internal/platform"
)

var (
	displayA = platform.Display{ID: 0, Name: "DP-1", Bounds: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, Primary: true}
	displayB = platform.Display{ID: 1, Name: "HDMI-1", Bounds: platform.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}}
	twoDisplays = []platform.Display{displayA, displayB}

	inactiveColor = config.Color{A: 0.6}
	activeColor   = &config.Color{R: 255, G: 255, B: 255, A: 0.1}
)

func newTestManager(active *config.Color) (*Manager, *fakeDriver) {
	d := newFakeDriver()
	return NewManager(d, inactiveColor, active, nil), d
}

func TestCategoryTitlesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range []Category{CategoryInactive, CategoryActive, CategoryPartial, CategoryTmux} {
		title := c.Title()
		assert.False(t, seen[title], "duplicate title %s", title)
		assert.True(t, IsOwnTitle(title))
		seen[title] = true
	}
	assert.False(t, IsOwnTitle("vim"))
}

func TestTwoDisplaysInactiveOnly(t *testing.T) {
	m, d := newTestManager(nil)

	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))

	assert.Equal(t, Counts{Inactive: 2}, m.Counts())
	require.Len(t, d.live(), 2)
	assert.True(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.True(t, d.onDisplay(CategoryInactive, 1).shown)

	require.NoError(t, m.UpdateVisibility(displayA.ID))
	assert.False(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.True(t, d.onDisplay(CategoryInactive, 1).shown)
}

func TestSurfacesUseConfiguredColorAndBounds(t *testing.T) {
	m, d := newTestManager(activeColor)

	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))

	s := d.onDisplay(CategoryInactive, 1)
	require.NotNil(t, s)
	assert.Equal(t, inactiveColor, s.spec.Color)
	assert.Equal(t, displayB.Bounds, s.bounds)

	a := d.onDisplay(CategoryActive, 1)
	require.NotNil(t, a)
	assert.Equal(t, *activeColor, a.spec.Color)
}

func TestUpdateVisibilityActiveFollowsFocus(t *testing.T) {
	m, d := newTestManager(activeColor)
	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))

	// Nothing focused: every active surface hidden.
	assert.False(t, d.onDisplay(CategoryActive, 0).shown)
	assert.False(t, d.onDisplay(CategoryActive, 1).shown)

	require.NoError(t, m.UpdateVisibility(displayB.ID))
	assert.False(t, d.onDisplay(CategoryActive, 0).shown)
	assert.True(t, d.onDisplay(CategoryActive, 1).shown)
	assert.True(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.False(t, d.onDisplay(CategoryInactive, 1).shown)

	require.NoError(t, m.UpdateVisibility(platform.NoDisplay))
	assert.True(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.True(t, d.onDisplay(CategoryInactive, 1).shown)
	assert.False(t, d.onDisplay(CategoryActive, 1).shown)
}

func TestCreateRespectsCurrentFocus(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.UpdateVisibility(displayB.ID))
	require.NoError(t, m.CreateInactive(twoDisplays))

	assert.True(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.False(t, d.onDisplay(CategoryInactive, 1).shown)
}

func TestCloseAllThenColdStart(t *testing.T) {
	m, d := newTestManager(activeColor)
	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	require.NoError(t, m.CreateTmux(
		geometry.PaneInfo{PaneLeft: 10, PaneTop: 5, PaneRight: 20, PaneBottom: 10, WindowWidth: 80, WindowHeight: 24},
		platform.Rect{X: 0, Y: 0, Width: 800, Height: 600},
		geometry.TerminalGeometry{FontWidth: 9, FontHeight: 18},
	))
	require.NoError(t, m.UpdateVisibility(0))

	require.NoError(t, m.CloseAll())
	assert.Equal(t, Counts{}, m.Counts())
	assert.Empty(t, d.live())
	assert.Equal(t, platform.NoDisplay, m.ActiveDisplay())

	// Closing again is a no-op.
	require.NoError(t, m.CloseAll())

	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))
	assert.Equal(t, Counts{Inactive: 2, Active: 2}, m.Counts())
	assert.True(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.True(t, d.onDisplay(CategoryInactive, 1).shown)
}

func TestTeardownDestroysEachSurfaceOnce(t *testing.T) {
	m, d := newTestManager(activeColor)
	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))
	require.NoError(t, m.CreatePartial(1, platform.Rect{X: 2100, Y: 100, Width: 800, Height: 600}, displayB.Bounds))

	require.NoError(t, m.Close())

	destroys := map[string]int{}
	for _, op := range d.ops {
		if len(op) > 8 && op[:8] == "destroy " {
			destroys[op]++
		}
	}
	assert.Len(t, destroys, 4+4)
	for op, n := range destroys {
		assert.Equal(t, 1, n, op)
	}
}

func TestRecreatePicksUpNewColor(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.CreateInactive(twoDisplays))

	red := config.Color{R: 200, A: 0.5}
	m.SetColors(red, nil)
	assert.Equal(t, inactiveColor, d.onDisplay(CategoryInactive, 0).spec.Color)

	require.NoError(t, m.RecreateInactive(twoDisplays))
	assert.Equal(t, 2, m.Counts().Inactive)
	assert.Equal(t, red, d.onDisplay(CategoryInactive, 0).spec.Color)
	assert.Len(t, d.live(), 2)
}

func TestCreateActiveWithoutColorIsNoop(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.CreateActive(twoDisplays))
	require.NoError(t, m.RecreateActive(twoDisplays))
	assert.Equal(t, 0, m.Counts().Active)
	assert.Empty(t, d.ops)
	assert.False(t, m.HasActiveColor())
}

func TestHideAllShowAllCoversEveryCategory(t *testing.T) {
	m, d := newTestManager(activeColor)
	require.NoError(t, m.CreateInactive(twoDisplays))
	require.NoError(t, m.CreateActive(twoDisplays))
	require.NoError(t, m.UpdateVisibility(0))
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	require.NoError(t, m.CreateTmux(
		geometry.PaneInfo{PaneLeft: 40, PaneTop: 0, PaneRight: 79, PaneBottom: 23, WindowWidth: 80, WindowHeight: 24},
		platform.Rect{X: 0, Y: 0, Width: 800, Height: 600},
		geometry.TerminalGeometry{FontWidth: 9, FontHeight: 18},
	))

	require.NoError(t, m.HideAll())
	assert.True(t, m.Suspended())
	for _, s := range d.live() {
		assert.False(t, s.shown, "category %s still shown", s.spec.Category)
	}

	// Visibility changes while suspended are remembered, not applied.
	require.NoError(t, m.UpdateVisibility(1))
	for _, s := range d.live() {
		assert.False(t, s.shown)
	}

	require.NoError(t, m.ShowAll())
	assert.True(t, d.onDisplay(CategoryInactive, 0).shown)
	assert.False(t, d.onDisplay(CategoryInactive, 1).shown)
	assert.True(t, d.onDisplay(CategoryActive, 1).shown)
	assert.False(t, d.onDisplay(CategoryActive, 0).shown)
	for _, s := range d.liveOf(CategoryPartial) {
		assert.True(t, s.shown)
	}
	for _, s := range d.liveOf(CategoryTmux) {
		assert.True(t, s.shown)
	}
}

func TestCreatePartialFourMargins(t *testing.T) {
	m, d := newTestManager(nil)
	window := platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}

	require.NoError(t, m.CreatePartial(0, window, displayA.Bounds))
	assert.Equal(t, 4, m.Counts().Partial)
	for _, s := range d.liveOf(CategoryPartial) {
		assert.True(t, s.shown)
		assert.False(t, s.bounds.Empty())
	}

	// Recreating replaces the previous set.
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 0, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	assert.Equal(t, 3, m.Counts().Partial)
	assert.Len(t, d.liveOf(CategoryPartial), 3)
}

func TestUpdatePartialMovesInPlace(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	created := len(d.ops)

	window := platform.Rect{X: 150, Y: 120, Width: 800, Height: 600}
	needsRecreate, err := m.UpdatePartial(0, window, displayA.Bounds)
	require.NoError(t, err)
	assert.False(t, needsRecreate)
	assert.Len(t, d.liveOf(CategoryPartial), 4)

	for _, op := range d.ops[created:] {
		assert.Contains(t, op, "move")
	}

	want := geometry.MarginRects(window, displayA.Bounds)
	got := map[platform.Rect]bool{}
	for _, s := range d.liveOf(CategoryPartial) {
		got[s.bounds] = true
	}
	for _, mg := range want {
		assert.True(t, got[mg.Rect], "missing margin %s", mg.Edge)
	}
}

func TestUpdatePartialCountMismatchDoesNotMutate(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	before := map[SurfaceID]platform.Rect{}
	for id, s := range d.surfaces {
		before[id] = s.bounds
	}
	opsBefore := len(d.ops)

	// Window now touches the left edge: three margins needed.
	needsRecreate, err := m.UpdatePartial(0, platform.Rect{X: 3, Y: 100, Width: 800, Height: 600}, displayA.Bounds)
	require.NoError(t, err)
	assert.True(t, needsRecreate)
	assert.Equal(t, opsBefore, len(d.ops))
	for id, s := range d.surfaces {
		assert.Equal(t, before[id], s.bounds)
	}

	needsRecreate, err = m.UpdatePartialAndActiveAtomic(0, platform.Rect{X: 3, Y: 100, Width: 800, Height: 600}, displayA.Bounds)
	require.NoError(t, err)
	assert.True(t, needsRecreate)
	assert.Equal(t, 0, d.atomic)
	assert.Equal(t, opsBefore, len(d.ops))
}

func TestUpdatePartialAndActiveAtomicBatchesMoves(t *testing.T) {
	m, d := newTestManager(activeColor)
	require.NoError(t, m.CreateActive(twoDisplays))
	require.NoError(t, m.UpdateVisibility(0))
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	opsBefore := len(d.ops)

	window := platform.Rect{X: 120, Y: 140, Width: 700, Height: 500}
	needsRecreate, err := m.UpdatePartialAndActiveAtomic(0, window, displayA.Bounds)
	require.NoError(t, err)
	assert.False(t, needsRecreate)
	assert.Equal(t, 1, d.atomic)

	moves := d.ops[opsBefore:]
	assert.Len(t, moves, 5)
	for _, op := range moves {
		assert.Contains(t, op, "atomic")
	}
	assert.Equal(t, window, d.onDisplay(CategoryActive, 0).bounds)
	assert.Equal(t, displayB.Bounds, d.onDisplay(CategoryActive, 1).bounds)
}

func TestUpdatePartialMoveFailureReturnsError(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	d.failMove = true

	needsRecreate, err := m.UpdatePartial(0, platform.Rect{X: 110, Y: 100, Width: 800, Height: 600}, displayA.Bounds)
	assert.False(t, needsRecreate)
	assert.Error(t, err)
}

func TestHidePartialAndClosePartial(t *testing.T) {
	m, d := newTestManager(nil)
	require.NoError(t, m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds))
	require.NoError(t, m.CreatePartial(1, platform.Rect{X: 2100, Y: 100, Width: 800, Height: 600}, displayB.Bounds))

	require.NoError(t, m.HidePartial())
	for _, s := range d.liveOf(CategoryPartial) {
		assert.False(t, s.shown)
	}
	assert.Equal(t, 8, m.Counts().Partial)

	require.NoError(t, m.ClosePartial(0))
	assert.Equal(t, 4, m.Counts().Partial)
	require.NoError(t, m.ClearPartial())
	assert.Equal(t, 0, m.Counts().Partial)
	assert.Empty(t, d.liveOf(CategoryPartial))
}

func TestResizeAndRestoreActive(t *testing.T) {
	m, d := newTestManager(activeColor)
	require.NoError(t, m.CreateActive(twoDisplays))

	window := platform.Rect{X: 2000, Y: 50, Width: 600, Height: 400}
	require.NoError(t, m.ResizeActive(1, window))
	assert.Equal(t, window, d.onDisplay(CategoryActive, 1).bounds)

	require.NoError(t, m.RestoreActiveFullSize(1, displayB.Bounds))
	assert.Equal(t, displayB.Bounds, d.onDisplay(CategoryActive, 1).bounds)

	// Unknown display is ignored.
	require.NoError(t, m.ResizeActive(7, window))
}

func TestCreateTmuxMovesInPlaceOrReplaces(t *testing.T) {
	m, d := newTestManager(nil)
	window := platform.Rect{X: 0, Y: 0, Width: 800, Height: 600}
	geom := geometry.TerminalGeometry{FontWidth: 9, FontHeight: 18}

	left := geometry.PaneInfo{PaneLeft: 0, PaneTop: 0, PaneRight: 39, PaneBottom: 23, WindowWidth: 80, WindowHeight: 24}
	right := geometry.PaneInfo{PaneLeft: 41, PaneTop: 0, PaneRight: 79, PaneBottom: 23, WindowWidth: 80, WindowHeight: 24}
	middle := geometry.PaneInfo{PaneLeft: 10, PaneTop: 5, PaneRight: 20, PaneBottom: 10, WindowWidth: 80, WindowHeight: 24}

	require.NoError(t, m.CreateTmux(left, window, geom))
	require.Equal(t, 1, m.Counts().Tmux)
	first := d.liveOf(CategoryTmux)[0]

	require.NoError(t, m.CreateTmux(right, window, geom))
	require.Equal(t, 1, m.Counts().Tmux)
	assert.Same(t, first, d.liveOf(CategoryTmux)[0])
	assert.Equal(t, 1, first.moves)

	require.NoError(t, m.CreateTmux(middle, window, geom))
	assert.Equal(t, 4, m.Counts().Tmux)
	assert.True(t, first.destroyed)

	require.NoError(t, m.CreateTmux(geometry.PaneInfo{PaneRight: -1}, window, geom))
	assert.Equal(t, 0, m.Counts().Tmux)

	require.NoError(t, m.ClearTmux())
	assert.Empty(t, d.liveOf(CategoryTmux))
}

func TestCreateFailureKeepsPartialForTeardown(t *testing.T) {
	m, d := newTestManager(nil)
	d.failAfter = 2

	err := m.CreatePartial(0, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, displayA.Bounds)
	require.Error(t, err)
	assert.Equal(t, 2, m.Counts().Partial)

	require.NoError(t, m.Close())
	assert.Empty(t, d.live())
}
