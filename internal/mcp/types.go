package mcp

import "github.com/1broseidon/focusdim/internal/overlay"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Paused            bool           `json:"paused"`
	DisplayCount      int            `json:"display_count"`
	ActiveDisplay     int            `json:"active_display"`
	Overlays          overlay.Counts `json:"overlays"`
	OverlayTotal      int            `json:"overlay_total"`
	MessagesProcessed uint64         `json:"messages_processed"`
	Dragging          bool           `json:"dragging"`
	TopologyPending   bool           `json:"topology_pending"`
	DimmingEnabled    bool           `json:"dimming_enabled"`
	ActiveHighlight   bool           `json:"active_highlight"`
	PartialDimming    bool           `json:"partial_dimming"`
	TerminalPane      bool           `json:"terminal_pane"`
	UptimeSeconds     int64          `json:"uptime_seconds"`
}

// SetPausedInput is the input for the set_paused tool.
type SetPausedInput struct {
	Paused *bool `json:"paused,omitempty" jsonschema:"true hides every overlay, false shows them again. Omit together with toggle=true to flip the current state."`
	Toggle bool  `json:"toggle,omitempty" jsonschema:"When true, flip the current pause state. Ignored if paused is set."`
}

// SetPausedOutput is the output for the set_paused tool.
type SetPausedOutput struct {
	Paused bool `json:"paused"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	Reloaded bool `json:"reloaded"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayInfo describes one display tracked by the daemon.
type DisplayInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
	Focused bool   `json:"focused"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}
