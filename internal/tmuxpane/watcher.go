// Package tmuxpane samples the active tmux pane's cell geometry.
package tmuxpane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/focusdim/internal/geometry"
)

// ErrTmuxNotAvailable is returned when tmux is not installed.
var ErrTmuxNotAvailable = errors.New("tmux is not available in PATH")

const paneFormat = "#{pane_left} #{pane_top} #{pane_right} #{pane_bottom} #{window_width} #{window_height}"

const commandTimeout = time.Second

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrTmuxNotAvailable
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// Watcher polls tmux for the active pane and keeps the latest sample.
type Watcher struct {
	run      Runner
	interval time.Duration
	logger   *slog.Logger

	enabled atomic.Bool

	mu      sync.Mutex
	info    geometry.PaneInfo
	valid   bool
	failing bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRunner replaces the command runner.
func WithRunner(run Runner) Option {
	return func(w *Watcher) { w.run = run }
}

// NewWatcher creates a watcher sampling every interval.
func NewWatcher(interval time.Duration, logger *slog.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		run:      execRunner,
		interval: interval,
		logger:   logger,
	}
	w.enabled.Store(true)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetEnabled turns sampling on or off. A disabled watcher reports no pane.
func (w *Watcher) SetEnabled(enabled bool) {
	w.enabled.Store(enabled)
}

// Latest returns the most recent pane sample and whether it is usable.
func (w *Watcher) Latest() (geometry.PaneInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.info, w.valid
}

// Run samples until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if w.enabled.Load() {
			w.Poll(ctx)
		} else {
			w.invalidate()
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll takes one sample and reports whether the stored value changed.
func (w *Watcher) Poll(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := w.run(ctx, "tmux", "display-message", "-p", paneFormat)
	var info geometry.PaneInfo
	if err == nil {
		info, err = ParsePaneInfo(string(out))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		if !w.failing {
			w.logger.Debug("tmux pane query failed", "error", err)
		}
		w.failing = true
		changed := w.valid
		w.valid = false
		return changed
	}
	if w.failing {
		w.logger.Debug("tmux pane query recovered")
	}
	w.failing = false

	valid := info.Valid()
	if valid == w.valid && info == w.info {
		return false
	}
	w.info = info
	w.valid = valid
	return true
}

func (w *Watcher) invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.valid = false
}

// ParsePaneInfo parses the output of paneFormat.
func ParsePaneInfo(out string) (geometry.PaneInfo, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 6 {
		return geometry.PaneInfo{}, fmt.Errorf("unexpected tmux output %q", strings.TrimSpace(out))
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return geometry.PaneInfo{}, fmt.Errorf("invalid tmux field %q: %w", f, err)
		}
		values[i] = v
	}

	return geometry.PaneInfo{
		PaneLeft:     values[0],
		PaneTop:      values[1],
		PaneRight:    values[2],
		PaneBottom:   values[3],
		WindowWidth:  values[4],
		WindowHeight: values[5],
	}, nil
}
