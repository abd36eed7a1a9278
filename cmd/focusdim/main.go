package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/ipc"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	socketPath string
	logLevel   string
}

func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (o *rootOptions) loadConfig() (*config.LoadResult, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

func (o *rootOptions) client() controlClient {
	if o.socketPath != "" {
		return ipc.NewClientWithPath(o.socketPath)
	}
	return ipc.NewClient()
}

// NewRootCmd builds the focusdim command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "focusdim",
		Short: "Dim every display except the one holding the focused window",
		Long: `focusdim paints translucent click-through overlays over the displays
(and optionally the screen margins and tmux panes) that do not hold the
focused window.

Run 'focusdim daemon' from your session startup, then control it with the
other commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/focusdim/config.yaml)")
	root.PersistentFlags().StringVar(&opts.socketPath, "socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/focusdim.sock)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log_level from the config (debug, info, warning, error)")

	newClient := opts.client
	root.AddCommand(
		newDaemonCmd(opts),
		NewStatusCmd(newClient),
		NewPauseCmd(newClient),
		NewResumeCmd(newClient),
		NewToggleCmd(newClient),
		NewReloadCmd(newClient),
		NewMonitorsCmd(newClient),
		newConfigCmd(opts),
		newMCPCmd(opts),
		newTUICmd(opts),
	)
	return root
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "focusdim:", err)
		os.Exit(1)
	}
}
