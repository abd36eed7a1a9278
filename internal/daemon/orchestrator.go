package daemon

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/focusdim/internal/config"
	"github.com/1broseidon/focusdim/internal/geometry"
	"github.com/1broseidon/focusdim/internal/overlay"
	"github.com/1broseidon/focusdim/internal/platform"
)

// activityWindow is how long the loop keeps the short interval after a change.
const activityWindow = 2 * time.Second

const notificationQueueSize = 64

// PaneSource supplies the latest tmux pane geometry.
type PaneSource interface {
	Latest() (geometry.PaneInfo, bool)
}

// Options configures an Orchestrator.
type Options struct {
	Backend  platform.Backend
	Overlays *overlay.Manager
	Config   *config.Config
	// Panes is optional; terminal pane dimming is inert without it.
	Panes  PaneSource
	Logger *slog.Logger
	// LogLevel, when set, follows the log_level config key.
	LogLevel *slog.LevelVar
	// PollFocus queries the focused window every tick instead of waiting
	// for FocusChanged notifications.
	PollFocus bool
}

type notification int

const (
	notifyDisplaysChanged notification = iota
	notifyFocusChanged
)

// Orchestrator drives the overlay manager from display, focus, geometry,
// configuration and pause changes. Tick and Run must be called from a single
// goroutine; the remaining exported methods are safe from any goroutine.
type Orchestrator struct {
	backend   platform.Backend
	overlays  *overlay.Manager
	panes     PaneSource
	logger    *slog.Logger
	logLevel  *slog.LevelVar
	pollFocus bool

	notes           chan notification
	droppedDisplays atomic.Bool
	droppedFocus    atomic.Bool
	wake            chan struct{}

	paused atomic.Bool
	exit   atomic.Bool

	cfgMu      sync.Mutex
	pendingCfg *config.Config

	// Owned by the loop goroutine.
	cfg          *config.Config
	titleRe      *regexp.Regexp
	st           trackedState
	topo         topologyState
	drag         dragState
	initialized  bool
	appliedPause bool
	focusDirty   bool
	lastActivity time.Time
	messages     uint64
	failing      map[string]bool

	statusMu  sync.Mutex
	status    Status
	startedAt time.Time
}

// New creates an orchestrator. The overlay manager's colors are reset from
// the configuration.
func New(opts Options) *Orchestrator {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg = cfg.Clone()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		backend:   opts.Backend,
		overlays:  opts.Overlays,
		panes:     opts.Panes,
		logger:    logger,
		logLevel:  opts.LogLevel,
		pollFocus: opts.PollFocus,
		notes:     make(chan notification, notificationQueueSize),
		wake:      make(chan struct{}, 1),
		cfg:       cfg,
		st:        newTrackedState(),
		failing:   map[string]bool{},
		startedAt: time.Now(),
	}
	o.titleRe = o.compileTitle(cfg)
	o.overlays.SetColors(cfg.InactiveColor, cfg.EffectiveActiveColor())
	o.paused.Store(cfg.Paused)
	o.publishStatus()
	return o
}

// DisplaysChanged queues a display topology notification.
func (o *Orchestrator) DisplaysChanged() {
	o.post(notifyDisplaysChanged, &o.droppedDisplays)
}

// FocusChanged queues a focused window notification.
func (o *Orchestrator) FocusChanged() {
	o.post(notifyFocusChanged, &o.droppedFocus)
}

func (o *Orchestrator) post(n notification, dropped *atomic.Bool) {
	select {
	case o.notes <- n:
	default:
		// Queue full: remember the kind so it is not lost.
		dropped.Store(true)
	}
	o.poke()
}

func (o *Orchestrator) poke() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// UpdateConfig hands a new configuration to the loop. Only the most recent
// pending configuration is applied.
func (o *Orchestrator) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	o.cfgMu.Lock()
	o.pendingCfg = cfg.Clone()
	o.cfgMu.Unlock()
	o.poke()
}

// SetPaused pauses or resumes all overlays.
func (o *Orchestrator) SetPaused(paused bool) {
	o.paused.Store(paused)
	o.poke()
}

// TogglePause flips the pause state and returns the new value.
func (o *Orchestrator) TogglePause() bool {
	for {
		cur := o.paused.Load()
		if o.paused.CompareAndSwap(cur, !cur) {
			o.poke()
			return !cur
		}
	}
}

// Paused reports the requested pause state.
func (o *Orchestrator) Paused() bool {
	return o.paused.Load()
}

// RequestExit asks Run to stop after its current iteration.
func (o *Orchestrator) RequestExit() {
	o.exit.Store(true)
	o.poke()
}

// Run ticks until ctx is cancelled or RequestExit is called, then destroys
// every overlay.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator started")

	for !o.stopping(ctx) {
		now := time.Now()
		o.Tick(now)
		if !o.sleep(ctx, o.nextInterval(now)) {
			break
		}
	}

	if err := o.overlays.Close(); err != nil {
		o.logger.Warn("failed to destroy overlays", "error", err)
	}
	o.publishStatus()
	o.logger.Info("orchestrator stopped", "messages_processed", o.messages)
	return nil
}

func (o *Orchestrator) stopping(ctx context.Context) bool {
	return ctx.Err() != nil || o.exit.Load()
}

// sleep waits for d or a wake-up. It returns false when the loop must stop.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-o.wake:
	case <-timer.C:
	}
	return !o.stopping(ctx)
}

func (o *Orchestrator) nextInterval(now time.Time) time.Duration {
	switch {
	case o.paused.Load() || !o.cfg.AnyFeatureEnabled():
		return o.cfg.DisabledInterval()
	case now.Sub(o.lastActivity) < activityWindow:
		return o.cfg.ActiveInterval()
	default:
		return o.cfg.IdleInterval()
	}
}

func (o *Orchestrator) compileTitle(cfg *config.Config) *regexp.Regexp {
	re, err := cfg.TitleRegexp()
	if err != nil {
		o.logger.Warn("invalid terminal title pattern, pane dimming disabled", "pattern", cfg.TerminalPane.TitlePattern, "error", err)
		return nil
	}
	return re
}

// reportFailure logs err the first time key starts failing.
func (o *Orchestrator) reportFailure(key string, err error) {
	if o.failing[key] {
		return
	}
	o.failing[key] = true
	o.logger.Warn(key+" failed", "error", err)
}

// clearFailure logs a recovery when key was failing.
func (o *Orchestrator) clearFailure(key string) {
	if !o.failing[key] {
		return
	}
	delete(o.failing, key)
	o.logger.Info(key + " recovered")
}

func (o *Orchestrator) markActivity(now time.Time) {
	o.lastActivity = now
}
