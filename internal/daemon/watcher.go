package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/monofocus/internal/layout"
)

// FocusPointer returns the screen point that decides the active monitor.
type FocusPointer func() (x, y int, err error)

// MonitorLister returns the current monitors.
type MonitorLister func() ([]layout.Monitor, error)

// WatcherConfig holds configuration for the pointer watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// PointerWatcher polls the focus point and reports when it crosses onto a
// different monitor.
type PointerWatcher struct {
	interval time.Duration
	point    FocusPointer
	monitors MonitorLister
	onChange func(layout.MonitorID)
	logger   *slog.Logger

	last layout.MonitorID
}

// NewPointerWatcher creates a watcher. onChange is called from the watcher
// goroutine only when the monitor under the focus point changes.
func NewPointerWatcher(cfg WatcherConfig, point FocusPointer, monitors MonitorLister, onChange func(layout.MonitorID)) *PointerWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	return &PointerWatcher{
		interval: interval,
		point:    point,
		monitors: monitors,
		onChange: onChange,
		logger:   cfg.Logger,
	}
}

func (w *PointerWatcher) String() string { return "pointer-watcher" }

// Serve starts the polling loop. Blocks until context is cancelled.
func (w *PointerWatcher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("pointer watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pointer watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll performs a single check.
func (w *PointerWatcher) poll() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("pointer watcher panic recovered", "error", err)
		}
	}()

	x, y, err := w.point()
	if err != nil {
		w.logger.Debug("pointer watcher: no focus point", "error", err)
		return
	}

	monitors, err := w.monitors()
	if err != nil {
		w.logger.Warn("pointer watcher: failed to list monitors", "error", err)
		return
	}

	// Points in gaps between monitors keep the previous monitor.
	id, ok := layout.MonitorAt(monitors, x, y)
	if !ok || id == w.last {
		return
	}

	w.logger.Debug("active monitor changed", "from", w.last, "to", id, "x", x, "y", y)
	w.last = id
	w.onChange(id)
}

// PollNow triggers an immediate check.
func (w *PointerWatcher) PollNow() {
	w.poll()
}
