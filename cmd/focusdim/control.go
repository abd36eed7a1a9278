package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/1broseidon/focusdim/internal/ipc"
)

// controlClient is the daemon surface the control commands use.
type controlClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	Pause() (bool, error)
	Resume() (bool, error)
	TogglePause() (bool, error)
	Reload() error
}

// NewStatusCmd creates the status command.
func NewStatusCmd(newClient func() controlClient) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long: `Show daemon status via IPC: pause state, tracked displays, live
overlay counts per category and the number of processed events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := newClient().GetStatus()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status as JSON")
	return cmd
}

func printStatus(w io.Writer, st *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running:     %v\n", st.DaemonRunning)
	fmt.Fprintf(w, "paused:             %v\n", st.Paused)
	fmt.Fprintf(w, "displays:           %d\n", st.DisplayCount)
	fmt.Fprintf(w, "active_display:     %d\n", st.ActiveDisplay)
	fmt.Fprintf(w, "overlays:           %d (inactive %d, active %d, partial %d, tmux %d)\n",
		st.Overlays.Total(), st.Overlays.Inactive, st.Overlays.Active, st.Overlays.Partial, st.Overlays.Tmux)
	fmt.Fprintf(w, "messages_processed: %d\n", st.MessagesProcessed)
	fmt.Fprintf(w, "uptime_seconds:     %d\n", st.UptimeSeconds)
}

// NewPauseCmd creates the pause command.
func NewPauseCmd(newClient func() controlClient) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Hide every overlay until resumed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paused, err := newClient().Pause()
			return reportPause(cmd.OutOrStdout(), paused, err)
		},
	}
}

// NewResumeCmd creates the resume command.
func NewResumeCmd(newClient func() controlClient) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Show the overlays again after a pause",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paused, err := newClient().Resume()
			return reportPause(cmd.OutOrStdout(), paused, err)
		},
	}
}

// NewToggleCmd creates the toggle command.
func NewToggleCmd(newClient func() controlClient) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip between paused and active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paused, err := newClient().TogglePause()
			return reportPause(cmd.OutOrStdout(), paused, err)
		},
	}
}

func reportPause(w io.Writer, paused bool, err error) error {
	if err != nil {
		return err
	}
	if paused {
		fmt.Fprintln(w, "overlays paused")
	} else {
		fmt.Fprintln(w, "overlays active")
	}
	return nil
}

// NewReloadCmd creates the reload command.
func NewReloadCmd(newClient func() controlClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-read the configuration file",
		Long: `Ask the daemon to re-read its configuration file. An invalid file is
reported here and the daemon keeps running with its previous configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

// NewMonitorsCmd creates the monitors command.
func NewMonitorsCmd(newClient func() controlClient) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "List the displays the daemon tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mons, err := newClient().GetMonitors()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), mons)
			}
			w := cmd.OutOrStdout()
			for _, m := range mons.Monitors {
				marker := " "
				if m.Focused {
					marker = "*"
				}
				primary := ""
				if m.Primary {
					primary = " primary"
				}
				fmt.Fprintf(w, "%s %d %-10s %dx%d+%d+%d%s\n", marker, m.ID, m.Name, m.Width, m.Height, m.X, m.Y, primary)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the monitors as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
