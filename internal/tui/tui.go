// Package tui is an interactive dashboard for a running focusdim daemon.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/focusdim/internal/ipc"
)

// RefreshInterval is how often the dashboard polls the daemon.
const RefreshInterval = time.Second

// Client is the daemon surface the dashboard needs.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	TogglePause() (bool, error)
	Reload() error
}

// Run opens the dashboard on the controlling terminal and blocks until the
// user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(client, RefreshInterval), tea.WithAltScreen()).Run()
	return err
}
