package x11

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EventSink receives change notifications from the watcher goroutine.
// Implementations must not block and must not touch X resources owned by
// another goroutine; posting to a queue is the intended use.
type EventSink interface {
	DisplaysChanged()
	FocusChanged()
}

// Watcher hosts the X event loop on a dedicated connection so that RandR
// and focus notifications arrive independently of the overlay connection.
type Watcher struct {
	conn   *Connection
	sink   EventSink
	logger *slog.Logger
}

// NewWatcher opens a separate X connection and subscribes the root window to
// RandR configuration changes and _NET_ACTIVE_WINDOW property changes.
func NewWatcher(sink EventSink, logger *slog.Logger) (*Watcher, error) {
	conn, err := NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect watcher to X11: %w", err)
	}

	w := &Watcher{conn: conn, sink: sink, logger: logger}
	if err := w.subscribe(); err != nil {
		conn.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) subscribe() error {
	xu := w.conn.XUtil

	if err := w.conn.SelectMonitorChanges(); err != nil {
		return fmt.Errorf("failed to select randr notifications: %w", err)
	}
	if err := xwindow.New(xu, w.conn.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen for root property changes: %w", err)
	}

	activeAtom, err := xprop.Atm(xu, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
		switch event.(type) {
		case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
			w.sink.DisplaysChanged()
		}
		return true
	}).Connect(xu)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom == activeAtom {
			w.sink.FocusChanged()
		}
	}).Connect(xu, w.conn.Root)

	return nil
}

// XUtil returns the watcher connection. Hotkey grabs made on it are served
// by Run.
func (w *Watcher) XUtil() *xgbutil.XUtil {
	return w.conn.XUtil
}

// RootWindow returns the root window of the watcher connection.
func (w *Watcher) RootWindow() xproto.Window {
	return w.conn.Root
}

// Close releases the watcher connection without running the loop.
func (w *Watcher) Close() {
	w.conn.Close()
}

// Run processes X events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.conn.EventLoop()
	}()

	w.logger.Info("x11 event watcher started")

	select {
	case <-ctx.Done():
	case <-done:
		w.logger.Warn("x11 event loop exited unexpectedly")
		w.conn.Close()
		return fmt.Errorf("x11 event loop exited")
	}

	// Closing the connection unblocks the pending event read.
	w.conn.Quit()
	w.conn.Close()
	<-done
	w.logger.Info("x11 event watcher stopped")
	return nil
}
