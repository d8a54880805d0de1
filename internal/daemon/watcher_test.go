package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/monofocus/internal/layout"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoScreens() ([]layout.Monitor, error) {
	return []layout.Monitor{
		{ID: "monitor_0", ResolutionWidth: 1920, ResolutionHeight: 1080},
		{ID: "monitor_1", X: 1920, ResolutionWidth: 1080, ResolutionHeight: 1920},
	}, nil
}

func TestPointerWatcher_FiresOnlyOnChange(t *testing.T) {
	points := [][2]int{{10, 10}, {500, 500}, {2000, 100}, {2000, 1500}, {1910, 1070}}
	i := 0
	point := func() (int, int, error) {
		p := points[i]
		i++
		return p[0], p[1], nil
	}

	var got []layout.MonitorID
	w := NewPointerWatcher(WatcherConfig{Logger: testLogger()}, point, twoScreens, func(id layout.MonitorID) {
		got = append(got, id)
	})
	for range points {
		w.PollNow()
	}

	want := []layout.MonitorID{"monitor_0", "monitor_1", "monitor_0"}
	if len(got) != len(want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("changes = %v, want %v", got, want)
		}
	}
}

func TestPointerWatcher_GapKeepsPrevious(t *testing.T) {
	points := [][2]int{{10, 10}, {2500, 1950}, {10, 20}}
	i := 0
	point := func() (int, int, error) {
		p := points[i]
		i++
		return p[0], p[1], nil
	}
	calls := 0
	w := NewPointerWatcher(WatcherConfig{Logger: testLogger()}, point, twoScreens, func(layout.MonitorID) { calls++ })
	for range points {
		w.PollNow()
	}
	if calls != 1 {
		t.Fatalf("expected one change, got %d", calls)
	}
}

func TestPointerWatcher_SurvivesErrorsAndPanics(t *testing.T) {
	point := func() (int, int, error) { return 0, 0, errors.New("no pointer") }
	w := NewPointerWatcher(WatcherConfig{Logger: testLogger()}, point, twoScreens, func(layout.MonitorID) {
		t.Fatal("unexpected change")
	})
	w.PollNow()

	panicky := NewPointerWatcher(WatcherConfig{Logger: testLogger()}, func() (int, int, error) { return 1, 1, nil },
		func() ([]layout.Monitor, error) { panic("boom") }, func(layout.MonitorID) {})
	panicky.PollNow()
}

func TestPointerWatcher_ServeStopsOnCancel(t *testing.T) {
	polled := make(chan struct{}, 1)
	point := func() (int, int, error) {
		select {
		case polled <- struct{}{}:
		default:
		}
		return 0, 0, errors.New("idle")
	}
	w := NewPointerWatcher(WatcherConfig{Interval: time.Millisecond, Logger: testLogger()}, point, twoScreens, func(layout.MonitorID) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Serve(ctx) }()

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never polled")
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
