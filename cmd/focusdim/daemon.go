package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/daemon"
	"github.com/1broseidon/focusdim/internal/hotkeys"
	"github.com/1broseidon/focusdim/internal/ipc"
	"github.com/1broseidon/focusdim/internal/logging"
	"github.com/1broseidon/focusdim/internal/overlay"
	"github.com/1broseidon/focusdim/internal/platform"
	"github.com/1broseidon/focusdim/internal/tmuxpane"
	"github.com/1broseidon/focusdim/internal/x11"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	var pollFocus bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the overlay daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts, pollFocus)
		},
	}
	cmd.Flags().BoolVar(&pollFocus, "poll-focus", false, "Query the focused window every tick instead of subscribing to X events")
	return cmd
}

// controller joins the orchestrator with the config watcher for IPC.
type controller struct {
	*daemon.Orchestrator
	watcher *config.Watcher
}

func (c *controller) Reload() error {
	return c.watcher.Reload()
}

// eventSink forwards X notifications once the orchestrator exists.
type eventSink struct {
	orch *daemon.Orchestrator
}

func (s *eventSink) DisplaysChanged() { s.orch.DisplaysChanged() }
func (s *eventSink) FocusChanged()    { s.orch.FocusChanged() }

func runDaemon(parent context.Context, opts *rootOptions, pollFocus bool) error {
	if parent == nil {
		parent = context.Background()
	}

	path, err := opts.resolveConfigPath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger := logging.New(logging.Options{Level: level})
	logger.Info("configuration loaded", "path", path, "files", len(res.Files))

	sink := &eventSink{}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()
	go backend.EventLoop()

	var events *x11.Watcher
	if !pollFocus {
		events, err = x11.NewWatcher(sink, logger.With("component", "x11"))
		if err != nil {
			logger.Warn("event watcher unavailable, polling focus instead", "error", err)
			pollFocus = true
		}
	}

	driver := overlay.NewX11Driver(backend.XUtil(), backend.RootWindow())
	manager := overlay.NewManager(driver, cfg.InactiveColor, cfg.EffectiveActiveColor(), logger.With("component", "overlay"))

	panes := tmuxpane.NewWatcher(cfg.PanePollInterval(), logger.With("component", "tmux"))
	panes.SetEnabled(cfg.TerminalPane.Enabled)

	orch := daemon.New(daemon.Options{
		Backend:   backend,
		Overlays:  manager,
		Config:    cfg,
		Panes:     panes,
		Logger:    logger.With("component", "daemon"),
		LogLevel:  logger.Level,
		PollFocus: pollFocus,
	})
	sink.orch = orch

	if events != nil {
		hk := hotkeys.NewHandler(events, logger.With("component", "hotkeys"))
		if err := hk.RegisterPause(cfg.PauseHotkey, orch); err != nil {
			logger.Warn("pause hotkey unavailable", "error", err)
		}
	}

	cfgWatcher := config.NewWatcher(path, logger.With("component", "config"))
	ipcServer, err := ipc.NewServer(opts.socketPath, &controller{Orchestrator: orch, watcher: cfgWatcher}, logger.With("component", "ipc"))
	if err == nil {
		err = ipcServer.Start()
	}
	if err != nil {
		if events != nil {
			events.Close()
		}
		return err
	}
	defer ipcServer.Stop()

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Run returns after destroying every overlay; stop the rest with it.
		defer cancel()
		return orch.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		ipcServer.Stop()
		return nil
	})
	g.Go(func() error { return cfgWatcher.Run(gctx) })
	g.Go(func() error { return panes.Run(gctx) })
	if events != nil {
		g.Go(func() error {
			if err := events.Run(gctx); err != nil {
				// Losing notifications is survivable: keep going on polling.
				logger.Warn("event watcher stopped", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				_ = cfgWatcher.Reload()
			case next := <-cfgWatcher.Updates():
				panes.SetEnabled(next.TerminalPane.Enabled)
				if opts.logLevel != "" {
					next.LogLevel = opts.logLevel
				}
				orch.UpdateConfig(next)
			}
		}
	})

	logger.Info("focusdim daemon started", "poll_focus", pollFocus, "pause_hotkey", cfg.PauseHotkey)
	err = g.Wait()
	logger.Info("focusdim daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
