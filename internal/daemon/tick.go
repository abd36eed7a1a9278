package daemon

import (
	"fmt"
	"time"

	"github.com/1broseidon/focusdim/internal/geometry"
	"github.com/1broseidon/focusdim/internal/overlay"
	"github.com/1broseidon/focusdim/internal/platform"
)

// Tick runs one bounded iteration: configuration, pause, notifications,
// topology, focus, geometry and terminal panes, in that order. Topology is
// handled first because it invalidates the display IDs the later steps use.
func (o *Orchestrator) Tick(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestrator tick panic recovered", "error", r)
		}
	}()
	defer o.publishStatus()

	if o.exit.Load() {
		return
	}

	o.applyPendingConfig(now)
	o.applyPause(now)
	o.drainNotifications(now)

	if !o.initialized {
		o.bootstrap(now)
	} else {
		o.checkTopology(now)
	}

	if o.appliedPause || !o.initialized {
		return
	}

	if o.pollFocus || o.focusDirty {
		o.focusDirty = false
		o.checkFocus(now, false)
	}
	o.trackGeometry(now)
	o.updatePanes(now)
}

func (o *Orchestrator) overlayErr(op string, err error) {
	if err != nil {
		o.logger.Warn("overlay operation failed", "op", op, "error", err)
	}
}

func (o *Orchestrator) applyPause(now time.Time) {
	want := o.paused.Load()
	if want == o.appliedPause {
		return
	}
	o.appliedPause = want
	o.markActivity(now)

	if want {
		o.logger.Info("overlays paused")
		o.overlayErr("hide all", o.overlays.HideAll())
		return
	}

	o.logger.Info("overlays resumed")
	o.overlayErr("show all", o.overlays.ShowAll())
	if o.initialized {
		// Cached state may be stale after being hidden.
		o.st.rectKnown = false
		o.drag.reset()
		o.checkFocus(now, true)
	}
}

func (o *Orchestrator) drainNotifications(now time.Time) {
	for {
		select {
		case n := <-o.notes:
			o.messages++
			o.handleNotification(n, now)
			continue
		default:
		}
		break
	}
	if o.droppedDisplays.Swap(false) {
		o.handleNotification(notifyDisplaysChanged, now)
	}
	if o.droppedFocus.Swap(false) {
		o.handleNotification(notifyFocusChanged, now)
	}
}

func (o *Orchestrator) handleNotification(n notification, now time.Time) {
	o.markActivity(now)
	switch n {
	case notifyDisplaysChanged:
		o.logger.Debug("display configuration change signalled")
		o.topo.signal(now)
	case notifyFocusChanged:
		o.focusDirty = true
	}
}

// bootstrap enumerates displays and creates the per-display overlays.
func (o *Orchestrator) bootstrap(now time.Time) {
	displays, err := o.queryDisplays()
	if err != nil {
		o.reportFailure("display query", err)
		return
	}
	o.clearFailure("display query")

	o.st.displays = displays
	o.createDisplayOverlays(false)
	o.initialized = true
	o.focusDirty = true
	o.markActivity(now)
	o.logger.Info("overlays initialized", "displays", len(displays))
}

func (o *Orchestrator) queryDisplays() ([]platform.Display, error) {
	displays, err := o.backend.Displays()
	if err != nil {
		return nil, err
	}
	if len(displays) == 0 {
		return nil, fmt.Errorf("no displays reported")
	}
	return displays, nil
}

// createDisplayOverlays creates (or recreates) the inactive and active sets
// for the current displays, honoring the enabled flags.
func (o *Orchestrator) createDisplayOverlays(recreate bool) {
	displays := o.st.displays
	if o.cfg.DimmingEnabled {
		if recreate {
			o.overlayErr("recreate inactive", o.overlays.RecreateInactive(displays))
		} else {
			o.overlayErr("create inactive", o.overlays.CreateInactive(displays))
		}
	} else {
		o.overlayErr("close inactive", o.overlays.CloseInactive())
	}

	if recreate {
		o.overlayErr("recreate active", o.overlays.RecreateActive(displays))
	} else {
		o.overlayErr("create active", o.overlays.CreateActive(displays))
	}
}

func (o *Orchestrator) checkTopology(now time.Time) {
	check := o.topo.due(now, o.cfg.FirstCheckDelay(), o.cfg.FinalCheckDelay())
	if check == checkNone {
		return
	}

	final := check == checkFinal

	// The stage only advances on a successful enumeration, so a failed
	// query is retried next tick.
	displays, err := o.queryDisplays()
	if err != nil {
		o.reportFailure("display query", err)
		o.st.resetWindow()
		o.focusDirty = true
		return
	}
	o.clearFailure("display query")
	if final {
		o.topo.pending = false
	} else {
		o.topo.firstDone = true
	}

	countChanged := len(displays) != len(o.st.displays)
	o.logger.Debug("display topology re-check", "final", final, "displays", len(displays), "changed", countChanged)
	o.st.displays = displays
	if !countChanged && !final {
		return
	}

	o.logger.Info("display topology changed, recreating overlays", "displays", len(displays), "final", final)
	o.overlayErr("clear partial", o.overlays.ClearPartial())
	o.overlayErr("clear tmux", o.overlays.ClearTmux())
	o.st.resetWindow()
	o.drag.reset()
	o.createDisplayOverlays(true)
	o.overlayErr("update visibility", o.overlays.UpdateVisibility(platform.NoDisplay))
	o.focusDirty = true
	o.markActivity(now)
}

// checkFocus re-reads the focused window. With force set, visibility is
// recomputed even when nothing changed.
func (o *Orchestrator) checkFocus(now time.Time, force bool) {
	aw, err := o.backend.ActiveWindow()
	if err != nil {
		o.reportFailure("focused window query", err)
		if o.st.windowKnown || force {
			o.clearFocusedWindow()
		}
		return
	}
	o.clearFailure("focused window query")

	if overlay.IsOwnTitle(aw.Title) {
		return
	}

	windowChanged := !o.st.windowKnown || aw.ID != o.st.window
	displayChanged := aw.DisplayID != o.st.display
	o.st.title = aw.Title
	o.st.bounds = aw.Bounds
	if !windowChanged && !displayChanged && !force {
		return
	}

	o.logger.Debug("focus changed", "window", aw.ID, "display", aw.DisplayID, "process", aw.ProcessName)
	o.st.windowKnown = true
	o.st.window = aw.ID
	o.switchDisplay(now, aw.DisplayID, displayChanged)
}

// switchDisplay makes displayID the focused display. Margins are display
// relative, so they are dropped when the display changes.
func (o *Orchestrator) switchDisplay(now time.Time, displayID int, displayChanged bool) {
	o.markActivity(now)
	o.overlayErr("update visibility", o.overlays.UpdateVisibility(displayID))

	if displayChanged {
		o.overlayErr("clear partial", o.overlays.ClearPartial())
		if old, ok := platform.DisplayByID(o.st.displays, o.st.display); ok {
			o.overlayErr("restore active", o.overlays.RestoreActiveFullSize(old.ID, old.Bounds))
		}
	}

	o.st.display = displayID
	o.st.rectKnown = false
	o.drag.reset()
}

func (o *Orchestrator) clearFocusedWindow() {
	o.overlayErr("clear partial", o.overlays.ClearPartial())
	if d, ok := o.st.focusedDisplay(); ok {
		o.overlayErr("restore active", o.overlays.RestoreActiveFullSize(d.ID, d.Bounds))
	}
	o.st.resetWindow()
	o.drag.reset()
	o.overlayErr("update visibility", o.overlays.UpdateVisibility(platform.NoDisplay))
}

// followWindow re-reads the focused window's rectangle and switches displays
// when the window was moved without a focus change (keyboard moves, drags).
// It reports the display and rectangle to keep tracking, or false when the
// window is unknown, unreadable or has just changed display.
func (o *Orchestrator) followWindow(now time.Time) (platform.Display, platform.Rect, bool) {
	display, ok := o.st.focusedDisplay()
	if !ok {
		return platform.Display{}, platform.Rect{}, false
	}

	rect, err := o.backend.WindowRect(o.st.window)
	if err != nil {
		o.reportFailure("window geometry query", err)
		return platform.Display{}, platform.Rect{}, false
	}
	o.clearFailure("window geometry query")
	o.st.bounds = rect

	if id := platform.DisplayForRect(o.st.displays, rect); id != platform.NoDisplay && id != display.ID {
		o.logger.Debug("focused window moved to another display", "display", id)
		o.switchDisplay(now, id, true)
		return platform.Display{}, platform.Rect{}, false
	}
	return display, rect, true
}

// trackGeometry follows the focused window's rectangle for margin dimming.
func (o *Orchestrator) trackGeometry(now time.Time) {
	display, rect, ok := o.followWindow(now)
	if !ok || !o.cfg.PartialDimmingEnabled {
		return
	}

	maximized, err := o.backend.IsMaximized(o.st.window)
	if err != nil {
		maximized = false
	}

	if !o.st.rectKnown {
		o.st.rectKnown = true
		o.st.rect = rect
		o.st.maximized = maximized
		o.placeMargins(display, rect, maximized)
		return
	}

	if rect == o.st.rect {
		if o.drag.settled(now, o.cfg.DragStableThreshold()) {
			o.drag.active = false
			o.logger.Debug("window drag ended", "rect", rect)
			o.st.maximized = maximized
			o.placeMargins(display, rect, maximized)
			o.markActivity(now)
		}
		return
	}

	o.markActivity(now)
	o.st.rect = rect
	if o.drag.observeChange(now, o.cfg.DragStartThreshold()) {
		o.logger.Debug("window drag started")
		o.overlayErr("hide partial", o.overlays.HidePartial())
		o.overlayErr("restore active", o.overlays.RestoreActiveFullSize(display.ID, display.Bounds))
	}
	if o.drag.active {
		return
	}

	if maximized != o.st.maximized {
		o.st.maximized = maximized
		o.placeMargins(display, rect, maximized)
		return
	}
	if maximized {
		return
	}

	needsRecreate, err := o.overlays.UpdatePartialAndActiveAtomic(display.ID, rect, display.Bounds)
	if err != nil {
		o.logger.Debug("in-place margin update failed, recreating", "error", err)
	}
	if needsRecreate || err != nil {
		o.placeMargins(display, rect, false)
	}
}

// placeMargins rebuilds the margins and active highlight for a window.
func (o *Orchestrator) placeMargins(display platform.Display, rect platform.Rect, maximized bool) {
	if maximized {
		o.overlayErr("close partial", o.overlays.ClosePartial(display.ID))
		o.overlayErr("restore active", o.overlays.RestoreActiveFullSize(display.ID, display.Bounds))
		return
	}
	o.overlayErr("create partial", o.overlays.CreatePartial(display.ID, rect, display.Bounds))
	o.overlayErr("resize active", o.overlays.ResizeActive(display.ID, rect))
}

// updatePanes dims inactive tmux panes inside a focused terminal.
func (o *Orchestrator) updatePanes(now time.Time) {
	if !o.paneDimmingApplies() {
		if o.st.paneShown {
			o.overlayErr("clear tmux", o.overlays.ClearTmux())
			o.st.paneShown = false
			o.markActivity(now)
		}
		return
	}

	info, ok := o.panes.Latest()
	if !ok {
		if o.st.paneShown {
			o.overlayErr("clear tmux", o.overlays.ClearTmux())
			o.st.paneShown = false
		}
		return
	}

	// followWindow refreshed the bounds earlier in this tick.
	rect := o.st.bounds
	if o.st.paneShown && info == o.st.pane && rect == o.st.paneRect {
		return
	}

	tp := o.cfg.TerminalPane
	geom := geometry.TerminalGeometry{
		FontWidth:   tp.FontWidth,
		FontHeight:  tp.FontHeight,
		PaddingLeft: tp.PaddingLeft,
		PaddingTop:  tp.PaddingTop,
	}
	if err := o.overlays.CreateTmux(info, rect, geom); err != nil {
		o.overlayErr("create tmux", err)
		o.overlayErr("clear tmux", o.overlays.ClearTmux())
		o.st.paneShown = false
		return
	}
	o.st.paneShown = true
	o.st.pane = info
	o.st.paneRect = rect
	o.markActivity(now)
}

func (o *Orchestrator) paneDimmingApplies() bool {
	return o.cfg.TerminalPane.Enabled &&
		o.panes != nil &&
		o.titleRe != nil &&
		o.st.windowKnown &&
		o.titleRe.MatchString(o.st.title)
}
