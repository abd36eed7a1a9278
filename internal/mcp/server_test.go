package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/focusdim/internal/ipc"
	"github.com/1broseidon/focusdim/internal/logging"
	"github.com/1broseidon/focusdim/internal/overlay"
)

type fakeDaemon struct {
	status    ipc.StatusData
	monitors  ipc.MonitorsData
	paused    bool
	reloadErr error
	err       error
	calls     []string
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	d.calls = append(d.calls, "status")
	if d.err != nil {
		return nil, d.err
	}
	st := d.status
	st.Paused = d.paused
	return &st, nil
}

func (d *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	d.calls = append(d.calls, "monitors")
	if d.err != nil {
		return nil, d.err
	}
	return &d.monitors, nil
}

func (d *fakeDaemon) SetPaused(paused bool) (bool, error) {
	d.calls = append(d.calls, "set")
	d.paused = paused
	return d.paused, d.err
}

func (d *fakeDaemon) TogglePause() (bool, error) {
	d.calls = append(d.calls, "toggle")
	d.paused = !d.paused
	return d.paused, d.err
}

func (d *fakeDaemon) Reload() error {
	d.calls = append(d.calls, "reload")
	return d.reloadErr
}

func newTestServer(d *fakeDaemon) *Server {
	return NewServer(d, logging.Discard())
}

func TestGetStatus(t *testing.T) {
	d := &fakeDaemon{status: ipc.StatusData{
		DisplayCount:      2,
		ActiveDisplay:     1,
		Overlays:          overlay.Counts{Inactive: 2, Active: 2, Partial: 3},
		MessagesProcessed: 9,
		UptimeSeconds:     42,
	}}
	s := newTestServer(d)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("get_status error: %v", err)
	}
	if out.DisplayCount != 2 || out.ActiveDisplay != 1 {
		t.Fatalf("unexpected displays: %+v", out)
	}
	if out.OverlayTotal != 7 {
		t.Fatalf("OverlayTotal = %d, want 7", out.OverlayTotal)
	}
	if out.UptimeSeconds != 42 || out.MessagesProcessed != 9 {
		t.Fatalf("unexpected counters: %+v", out)
	}
}

func TestGetStatus_DaemonDown(t *testing.T) {
	d := &fakeDaemon{err: errors.New("failed to connect to daemon")}
	s := newTestServer(d)

	if _, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{}); err == nil {
		t.Fatal("expected error when daemon is unreachable")
	}
}

func TestSetPaused(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	yes, no := true, false

	tests := []struct {
		name  string
		input SetPausedInput
		want  bool
	}{
		{"explicit pause", SetPausedInput{Paused: &yes}, true},
		{"explicit resume", SetPausedInput{Paused: &no}, false},
		{"toggle from resumed", SetPausedInput{Toggle: true}, true},
		{"explicit wins over toggle", SetPausedInput{Paused: &yes, Toggle: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleSetPaused(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("set_paused error: %v", err)
			}
			if out.Paused != tt.want {
				t.Fatalf("Paused = %v, want %v", out.Paused, tt.want)
			}
		})
	}
}

func TestSetPaused_RequiresArgument(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	if _, _, err := s.handleSetPaused(context.Background(), nil, SetPausedInput{}); err == nil {
		t.Fatal("expected error without paused or toggle")
	}
	if len(d.calls) != 0 {
		t.Fatalf("daemon called without arguments: %v", d.calls)
	}
}

func TestReloadConfig(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	_, out, err := s.handleReloadConfig(context.Background(), nil, ReloadConfigInput{})
	if err != nil || !out.Reloaded {
		t.Fatalf("reload_config = %+v, %v", out, err)
	}

	d.reloadErr = errors.New("daemon error: Failed to reload config: inactive_color.a out of range")
	if _, _, err := s.handleReloadConfig(context.Background(), nil, ReloadConfigInput{}); err == nil {
		t.Fatal("expected reload error to surface")
	}
}

func TestListDisplays(t *testing.T) {
	d := &fakeDaemon{monitors: ipc.MonitorsData{Monitors: []ipc.MonitorInfo{
		{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Primary: true},
		{ID: 1, Name: "HDMI-1", X: 1920, Width: 1280, Height: 1024, Focused: true},
	}}}
	s := newTestServer(d)

	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list_displays error: %v", err)
	}
	if len(out.Displays) != 2 {
		t.Fatalf("len(Displays) = %d, want 2", len(out.Displays))
	}
	if !out.Displays[0].Primary || out.Displays[0].Focused {
		t.Fatalf("display 0 flags wrong: %+v", out.Displays[0])
	}
	if out.Displays[1].X != 1920 || !out.Displays[1].Focused {
		t.Fatalf("display 1 wrong: %+v", out.Displays[1])
	}
}

func TestClientSatisfiesDaemon(t *testing.T) {
	var _ Daemon = ipc.NewClientWithPath("/nonexistent.sock")
}
