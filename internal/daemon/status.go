package daemon

import (
	"time"

	"github.com/1broseidon/focusdim/internal/overlay"
	"github.com/1broseidon/focusdim/internal/platform"
)

// Status is a point-in-time snapshot of the orchestrator for control surfaces.
type Status struct {
	Paused            bool               `json:"paused"`
	Displays          []platform.Display `json:"displays"`
	ActiveDisplay     int                `json:"active_display"`
	Overlays          overlay.Counts     `json:"overlays"`
	MessagesProcessed uint64             `json:"messages_processed"`
	Dragging          bool               `json:"dragging"`
	TopologyPending   bool               `json:"topology_pending"`
	DimmingEnabled    bool               `json:"dimming_enabled"`
	ActiveHighlight   bool               `json:"active_highlight"`
	PartialDimming    bool               `json:"partial_dimming"`
	TerminalPane      bool               `json:"terminal_pane"`
	StartedAt         time.Time          `json:"started_at"`
	Uptime            time.Duration      `json:"uptime"`
}

// Status returns the latest snapshot. Safe from any goroutine.
func (o *Orchestrator) Status() Status {
	o.statusMu.Lock()
	s := o.status
	o.statusMu.Unlock()

	s.Displays = append([]platform.Display(nil), s.Displays...)
	s.Paused = o.paused.Load()
	s.Uptime = time.Since(s.StartedAt).Truncate(time.Second)
	return s
}

func (o *Orchestrator) publishStatus() {
	s := Status{
		Paused:            o.paused.Load(),
		Displays:          append([]platform.Display(nil), o.st.displays...),
		ActiveDisplay:     o.st.display,
		Overlays:          o.overlays.Counts(),
		MessagesProcessed: o.messages,
		Dragging:          o.drag.active,
		TopologyPending:   o.topo.pending,
		DimmingEnabled:    o.cfg.DimmingEnabled,
		ActiveHighlight:   o.cfg.EffectiveActiveColor() != nil,
		PartialDimming:    o.cfg.PartialDimmingEnabled,
		TerminalPane:      o.cfg.TerminalPane.Enabled,
		StartedAt:         o.startedAt,
	}

	o.statusMu.Lock()
	o.status = s
	o.statusMu.Unlock()
}
