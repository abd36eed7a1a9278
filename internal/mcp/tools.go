package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("failed to query daemon status: %w", err)
	}

	return nil, StatusOutput{
		Paused:            st.Paused,
		DisplayCount:      st.DisplayCount,
		ActiveDisplay:     st.ActiveDisplay,
		Overlays:          st.Overlays,
		OverlayTotal:      st.Overlays.Total(),
		MessagesProcessed: st.MessagesProcessed,
		Dragging:          st.Dragging,
		TopologyPending:   st.TopologyPending,
		DimmingEnabled:    st.DimmingEnabled,
		ActiveHighlight:   st.ActiveHighlight,
		PartialDimming:    st.PartialDimming,
		TerminalPane:      st.TerminalPane,
		UptimeSeconds:     st.UptimeSeconds,
	}, nil
}

func (s *Server) handleSetPaused(_ context.Context, _ *mcpsdk.CallToolRequest, args SetPausedInput) (*mcpsdk.CallToolResult, SetPausedOutput, error) {
	var (
		paused bool
		err    error
	)
	switch {
	case args.Paused != nil:
		paused, err = s.daemon.SetPaused(*args.Paused)
	case args.Toggle:
		paused, err = s.daemon.TogglePause()
	default:
		return nil, SetPausedOutput{}, fmt.Errorf("set_paused requires paused or toggle=true")
	}
	if err != nil {
		return nil, SetPausedOutput{}, fmt.Errorf("failed to change pause state: %w", err)
	}

	s.logger.Info("pause state changed via mcp", "paused", paused)
	return nil, SetPausedOutput{Paused: paused}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadConfigOutput{}, fmt.Errorf("failed to reload config: %w", err)
	}
	return nil, ReloadConfigOutput{Reloaded: true}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	mons, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("failed to list displays: %w", err)
	}

	out := ListDisplaysOutput{Displays: make([]DisplayInfo, 0, len(mons.Monitors))}
	for _, m := range mons.Monitors {
		out.Displays = append(out.Displays, DisplayInfo{
			ID:      m.ID,
			Name:    m.Name,
			X:       m.X,
			Y:       m.Y,
			Width:   m.Width,
			Height:  m.Height,
			Primary: m.Primary,
			Focused: m.Focused,
		})
	}
	return nil, out, nil
}
