package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/focusdim/internal/ipc"
	"github.com/1broseidon/focusdim/internal/overlay"
)

type fakeClient struct {
	status   *ipc.StatusData
	monitors *ipc.MonitorsData
	err      error
	paused   bool
	reloads  int
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error)     { return f.status, f.err }
func (f *fakeClient) GetMonitors() (*ipc.MonitorsData, error) { return f.monitors, f.err }

func (f *fakeClient) TogglePause() (bool, error) {
	f.paused = !f.paused
	return f.paused, nil
}

func (f *fakeClient) Reload() error {
	f.reloads++
	return f.err
}

func press(key string) tea.KeyMsg {
	switch key {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func sized(client Client) model {
	m := newModel(client, time.Second)
	m.width = 100
	m.height = 30
	return m
}

func TestSnapshotConnects(t *testing.T) {
	c := &fakeClient{
		status: &ipc.StatusData{DaemonRunning: true, DisplayCount: 2, Overlays: overlay.Counts{Inactive: 1}},
		monitors: &ipc.MonitorsData{Monitors: []ipc.MonitorInfo{
			{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Primary: true, Focused: true},
		}},
	}
	m := sized(c)

	msg := m.poll()()
	m, _ = update(t, m, msg)
	assert.True(t, m.connected)

	view := m.View()
	assert.Contains(t, view, "daemon connected")
	assert.Contains(t, view, "1 (inactive 1, active 0, partial 0, tmux 0)")

	m, _ = update(t, m, press("2"))
	assert.Equal(t, TabDisplays, m.activeTab)
	assert.Contains(t, m.View(), "* 0 DP-1")
}

func TestSnapshotErrorDisconnects(t *testing.T) {
	c := &fakeClient{err: errors.New("failed to connect to daemon")}
	m := sized(c)
	m.connected = true

	m, _ = update(t, m, m.poll()())
	assert.False(t, m.connected)
	view := m.View()
	assert.Contains(t, view, "daemon not running")
	assert.Contains(t, view, "failed to connect to daemon")
}

func TestTabCycling(t *testing.T) {
	m := sized(&fakeClient{})

	m, _ = update(t, m, press("tab"))
	assert.Equal(t, TabDisplays, m.activeTab)
	m, _ = update(t, m, press("tab"))
	assert.Equal(t, TabStatus, m.activeTab)
	m, _ = update(t, m, press("shift+tab"))
	assert.Equal(t, TabDisplays, m.activeTab)
}

func TestPauseKeyTogglesAndRefreshes(t *testing.T) {
	c := &fakeClient{status: &ipc.StatusData{}, monitors: &ipc.MonitorsData{}}
	m := sized(c)

	m, cmd := update(t, m, press("p"))
	require.NotNil(t, cmd)
	m, refresh := update(t, m, cmd())
	assert.True(t, c.paused)
	assert.Equal(t, "overlays paused", m.notice)
	assert.NotNil(t, refresh)
	assert.True(t, strings.Contains(m.View(), "overlays paused"))
}

func TestReloadErrorShownAsNotice(t *testing.T) {
	c := &fakeClient{}
	m := sized(c)

	m, cmd := update(t, m, press("r"))
	require.NotNil(t, cmd)
	c.err = errors.New("inactive_color.a: out of range")
	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, c.reloads)
	assert.Equal(t, "error: inactive_color.a: out of range", m.notice)
}

func TestQuit(t *testing.T) {
	m := sized(&fakeClient{})
	_, cmd := update(t, m, press("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
