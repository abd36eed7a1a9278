package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
)

const (
	defaultWatchInterval = time.Second
	defaultWatchDebounce = 250 * time.Millisecond
)

// Watcher polls the config file set for changes and publishes freshly loaded
// snapshots. Invalid files are logged and skipped so the consumer keeps its
// last good configuration.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	updates  chan *Config
	debounce func(func())

	mu    sync.Mutex
	stamp map[string]fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
	exists  bool
}

// NewWatcher watches path, its drop-in directory and every drop-in file.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		path:     path,
		interval: defaultWatchInterval,
		logger:   logger,
		updates:  make(chan *Config, 1),
		debounce: debounce.New(defaultWatchDebounce),
		stamp:    map[string]fileStamp{},
	}
	w.snapshot(w.watchSet(nil))
	return w
}

// Updates delivers new configurations. Only the latest pending snapshot is kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Reload loads the file immediately and publishes the result if it is valid.
func (w *Watcher) Reload() error {
	res, err := LoadFromPath(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous configuration", "path", w.path, "error", err)
		return err
	}

	w.snapshot(w.watchSet(res.Files))
	w.publish(res.Config)
	w.logger.Info("configuration reloaded", "path", w.path, "files", len(res.Files))
	return nil
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if w.changed() {
				w.debounce(func() {
					if ctx.Err() != nil {
						return
					}
					_ = w.Reload()
				})
			}
		}
	}
}

func (w *Watcher) publish(cfg *Config) {
	for {
		select {
		case w.updates <- cfg:
			return
		default:
		}
		// Drop the stale pending snapshot.
		select {
		case <-w.updates:
		default:
		}
	}
}

// watchSet includes the drop-in directory so added or removed files count
// as changes.
func (w *Watcher) watchSet(files []string) []string {
	base := []string{w.path, filepath.Join(filepath.Dir(w.path), DropInDir)}
	return append(base, files...)
}

func (w *Watcher) snapshot(files []string) {
	stamps := make(map[string]fileStamp, len(files))
	for _, f := range files {
		stamps[f] = statFile(f)
	}
	w.mu.Lock()
	w.stamp = stamps
	w.mu.Unlock()
}

func (w *Watcher) changed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := false
	for f, prev := range w.stamp {
		cur := statFile(f)
		if cur != prev {
			w.stamp[f] = cur
			changed = true
		}
	}
	return changed
}

func statFile(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size(), exists: true}
}
