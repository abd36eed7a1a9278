package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/focusdim/internal/ipc"
)

// snapshotMsg carries one poll of the daemon.
type snapshotMsg struct {
	status   *ipc.StatusData
	monitors *ipc.MonitorsData
	err      error
}

// actionMsg reports the outcome of a key-triggered daemon call.
type actionMsg struct {
	notice string
	err    error
}

type tickMsg time.Time

// model is the root bubbletea model for the dashboard.
type model struct {
	client   Client
	interval time.Duration

	activeTab Tab

	// Daemon state
	connected bool
	status    *ipc.StatusData
	monitors  *ipc.MonitorsData
	lastError string
	notice    string

	// Terminal dimensions
	width  int
	height int
}

func newModel(client Client, interval time.Duration) model {
	return model{
		client:    client,
		interval:  interval,
		activeTab: TabStatus,
	}
}

func (m model) poll() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		monitors, err := client.GetMonitors()
		return snapshotMsg{status: status, monitors: monitors, err: err}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1":
			m.activeTab = TabStatus
		case "2":
			m.activeTab = TabDisplays
		case "p":
			client := m.client
			return m, func() tea.Msg {
				paused, err := client.TogglePause()
				if paused {
					return actionMsg{notice: "overlays paused", err: err}
				}
				return actionMsg{notice: "overlays active", err: err}
			}
		case "r":
			client := m.client
			return m, func() tea.Msg {
				return actionMsg{notice: "config reloaded", err: client.Reload()}
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.poll(), m.tick())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.lastError = ""
		m.status = msg.status
		m.monitors = msg.monitors
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.notice = "error: " + msg.err.Error()
			return m, nil
		}
		m.notice = msg.notice
		return m, m.poll()
	}

	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	paused := m.status != nil && m.status.Paused
	statusBar := renderStatusBar(m.connected, paused, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width, m.notice)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case !m.connected:
		msg := "waiting for daemon"
		if m.lastError != "" {
			msg = errorStyle.Render(m.lastError)
		}
		content = msg
	case m.activeTab == TabDisplays:
		content = m.displaysView()
	default:
		content = m.statusView()
	}
	content = lipgloss.NewStyle().Width(m.width).Height(contentHeight).Padding(0, 1).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func (m model) statusView() string {
	st := m.status
	if st == nil {
		return ""
	}
	rows := [][2]string{
		{"paused", fmt.Sprint(st.Paused)},
		{"displays", fmt.Sprint(st.DisplayCount)},
		{"active display", fmt.Sprint(st.ActiveDisplay)},
		{"overlays", fmt.Sprintf("%d (inactive %d, active %d, partial %d, tmux %d)",
			st.Overlays.Total(), st.Overlays.Inactive, st.Overlays.Active, st.Overlays.Partial, st.Overlays.Tmux)},
		{"dimming", fmt.Sprint(st.DimmingEnabled)},
		{"active highlight", fmt.Sprint(st.ActiveHighlight)},
		{"partial dimming", fmt.Sprint(st.PartialDimming)},
		{"tmux panes", fmt.Sprint(st.TerminalPane)},
		{"dragging", fmt.Sprint(st.Dragging)},
		{"topology pending", fmt.Sprint(st.TopologyPending)},
		{"events processed", fmt.Sprint(st.MessagesProcessed)},
		{"uptime", (time.Duration(st.UptimeSeconds) * time.Second).String()},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) displaysView() string {
	if m.monitors == nil || len(m.monitors.Monitors) == 0 {
		return "no displays tracked"
	}
	var lines []string
	for _, d := range m.monitors.Monitors {
		marker := " "
		if d.Focused {
			marker = "*"
		}
		line := fmt.Sprintf("%s %d %-10s %dx%d+%d+%d", marker, d.ID, d.Name, d.Width, d.Height, d.X, d.Y)
		if d.Primary {
			line += " primary"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
