package daemon

import (
	"time"

	"github.com/1broseidon/focusdim/internal/geometry"
	"github.com/1broseidon/focusdim/internal/platform"
)

// trackedState is what the orchestrator last observed. It is owned by the
// goroutine running Tick.
type trackedState struct {
	displays []platform.Display

	windowKnown bool
	window      platform.WindowID
	title       string
	display     int
	bounds      platform.Rect

	rectKnown bool
	rect      platform.Rect
	maximized bool

	paneShown bool
	pane      geometry.PaneInfo
	paneRect  platform.Rect
}

func newTrackedState() trackedState {
	return trackedState{display: platform.NoDisplay}
}

// resetWindow forgets everything derived from the focused window. Display
// IDs cached here are invalid after a topology change.
func (s *trackedState) resetWindow() {
	s.windowKnown = false
	s.window = 0
	s.title = ""
	s.display = platform.NoDisplay
	s.bounds = platform.Rect{}
	s.rectKnown = false
	s.rect = platform.Rect{}
	s.maximized = false
	s.paneShown = false
}

// focusedDisplay returns the display holding the focused window.
func (s *trackedState) focusedDisplay() (platform.Display, bool) {
	if !s.windowKnown || s.display == platform.NoDisplay {
		return platform.Display{}, false
	}
	return platform.DisplayByID(s.displays, s.display)
}

// topologyState tracks the two-stage re-check after a display change signal.
type topologyState struct {
	pending    bool
	signaledAt time.Time
	firstDone  bool
}

// signal records a display change. A new signal restarts both stages.
func (t *topologyState) signal(now time.Time) {
	t.pending = true
	t.signaledAt = now
	t.firstDone = false
}

type topologyCheck int

const (
	checkNone topologyCheck = iota
	checkFirst
	checkFinal
)

// due returns the check to run at now, if any. At most one check is due per call.
func (t *topologyState) due(now time.Time, first, final time.Duration) topologyCheck {
	if !t.pending {
		return checkNone
	}
	elapsed := now.Sub(t.signaledAt)
	switch {
	case !t.firstDone && elapsed >= first:
		return checkFirst
	case t.firstDone && elapsed >= final:
		return checkFinal
	default:
		return checkNone
	}
}

// dragState implements the interactive move/resize heuristic.
type dragState struct {
	active     bool
	hasChange  bool
	lastChange time.Time
}

// observeChange records a geometry change and reports whether it starts a drag.
func (d *dragState) observeChange(now time.Time, startThreshold time.Duration) bool {
	starts := !d.active && d.hasChange && now.Sub(d.lastChange) < startThreshold
	if starts {
		d.active = true
	}
	d.hasChange = true
	d.lastChange = now
	return starts
}

// settled reports whether an active drag has been stable long enough to end.
func (d *dragState) settled(now time.Time, stableThreshold time.Duration) bool {
	return d.active && now.Sub(d.lastChange) >= stableThreshold
}

func (d *dragState) reset() {
	*d = dragState{}
}
