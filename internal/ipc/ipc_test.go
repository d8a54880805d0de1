package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/layout"
)

type fakeService struct {
	mu        sync.Mutex
	cfg       config.Config
	monitors  []layout.Monitor
	active    layout.MonitorID
	toggled   int
	subs      []chan gateway.Event
	observers []bool
	subscribe chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{
		cfg: config.DefaultConfig(),
		monitors: []layout.Monitor{
			{ID: "monitor_0", Name: "DP-1", ResolutionWidth: 1920, ResolutionHeight: 1080},
			{ID: "monitor_1", Name: "HDMI-1", X: 1920, ResolutionWidth: 1080, ResolutionHeight: 1920},
		},
		subscribe: make(chan struct{}, 4),
	}
}

func (f *fakeService) Config() (config.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg, nil
}

func (f *fakeService) Monitors() ([]layout.Monitor, error) { return f.monitors, nil }

func (f *fakeService) Layout(w, h float64) ([]layout.LayoutRect, error) {
	return layout.Normalize(f.monitors, w, h), nil
}

func (f *fakeService) CurrentMonitor() (layout.MonitorID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.active != ""
}

func (f *fakeService) UpdateOpacity(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg.Opacity = v
	return nil
}

func (f *fakeService) UpdateEnabled(v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg.Enabled = v
	return nil
}

func (f *fakeService) UpdateAutoStart(bool) error { return errors.New("autostart unavailable") }

func (f *fakeService) UpdateAnimationDuration(v int) error {
	if !config.ValidAnimationDuration(v) {
		return errors.New("invalid animation duration")
	}
	return nil
}

func (f *fakeService) UpdateLanguage(string) error { return nil }

func (f *fakeService) ToggleShield() {
	f.mu.Lock()
	f.toggled++
	f.mu.Unlock()
	f.publish(gateway.Event{Kind: gateway.EventToggleShield})
}

func (f *fakeService) Status() StatusData {
	return StatusData{DaemonRunning: true, MonitorCount: len(f.monitors)}
}

func (f *fakeService) Subscribe(observer bool) (<-chan gateway.Event, func()) {
	ch := make(chan gateway.Event, 4)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.observers = append(f.observers, observer)
	f.mu.Unlock()
	f.subscribe <- struct{}{}
	return ch, func() {}
}

func (f *fakeService) publish(ev gateway.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- ev
	}
}

func startServer(t *testing.T, svc Service) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "mf-ipc")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(socket, svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return NewClientWithPath(socket)
}

func TestClientServer_Queries(t *testing.T) {
	svc := newFakeService()
	svc.active = "monitor_1"
	c := startServer(t, svc)
	ctx := context.Background()

	cfg, err := c.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg != config.DefaultConfig() {
		t.Fatalf("config = %+v", cfg)
	}

	monitors, err := c.GetMonitorInfo(ctx)
	if err != nil || len(monitors) != 2 || monitors[1].Name != "HDMI-1" {
		t.Fatalf("GetMonitorInfo = %+v, %v", monitors, err)
	}

	rects, err := c.GetMonitorLayout(ctx, 400, 160)
	if err != nil || len(rects) != 2 {
		t.Fatalf("GetMonitorLayout = %+v, %v", rects, err)
	}
	if rects[0].X != layout.Margin {
		t.Fatalf("layout not normalized: %+v", rects[0])
	}

	id, ok, err := c.GetCurrentMonitor(ctx)
	if err != nil || !ok || id != "monitor_1" {
		t.Fatalf("GetCurrentMonitor = %q, %v, %v", id, ok, err)
	}
}

func TestClientServer_NoCurrentMonitor(t *testing.T) {
	c := startServer(t, newFakeService())
	id, ok, err := c.GetCurrentMonitor(context.Background())
	if err != nil || ok || id != "" {
		t.Fatalf("GetCurrentMonitor = %q, %v, %v", id, ok, err)
	}
}

func TestClientServer_Mutations(t *testing.T) {
	svc := newFakeService()
	c := startServer(t, svc)
	ctx := context.Background()

	if err := c.UpdateOpacity(ctx, 1.7); err != nil {
		t.Fatalf("UpdateOpacity: %v", err)
	}
	if got, _ := svc.Config(); got.Opacity != 1 {
		t.Fatalf("opacity should be clamped before sending, got %v", got.Opacity)
	}
	if err := c.UpdateEnabled(ctx, false); err != nil {
		t.Fatalf("UpdateEnabled: %v", err)
	}

	err := c.UpdateAutoStart(ctx, true)
	if err == nil || !strings.Contains(err.Error(), "daemon error") {
		t.Fatalf("expected daemon error, got %v", err)
	}
	if err := c.UpdateAnimationDuration(ctx, 250); err == nil {
		t.Fatal("expected invalid duration to be rejected")
	}
}

func TestClientServer_LayoutRejectsBadContainer(t *testing.T) {
	c := startServer(t, newFakeService())
	if _, err := c.GetMonitorLayout(context.Background(), 0, 160); err == nil {
		t.Fatal("expected error for zero container width")
	}
}

func TestClientServer_SubscribeStreamsEvents(t *testing.T) {
	svc := newFakeService()
	c := startServer(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := c.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	<-svc.subscribe

	svc.publish(gateway.Event{Kind: gateway.EventMonitorChanged, MonitorID: "monitor_0"})
	if err := c.ToggleShield(context.Background()); err != nil {
		t.Fatalf("ToggleShield: %v", err)
	}

	want := []gateway.Event{
		{Kind: gateway.EventMonitorChanged, MonitorID: "monitor_0"},
		{Kind: gateway.EventToggleShield},
	}
	for i, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Fatalf("event %d = %+v, want %+v", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	cancel()
	select {
	case _, open := <-events:
		for open {
			_, open = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}

func TestClientServer_ObserveFlag(t *testing.T) {
	svc := newFakeService()
	c := startServer(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := c.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	<-svc.subscribe
	if _, err := c.Observe(ctx); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	<-svc.subscribe

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.observers) != 2 || svc.observers[0] || !svc.observers[1] {
		t.Fatalf("observer flags = %v, want [false true]", svc.observers)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestEventFrame_WireFormat(t *testing.T) {
	tests := []struct {
		ev   gateway.Event
		want string
	}{
		{gateway.Event{Kind: gateway.EventMonitorChanged, MonitorID: "monitor_1"}, `{"event":"monitor-changed","payload":"monitor_1"}`},
		{gateway.Event{Kind: gateway.EventMonitorChanged}, `{"event":"monitor-changed"}`},
		{gateway.Event{Kind: gateway.EventToggleShield}, `{"event":"toggle-shield"}`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(NewEventFrame(tt.ev))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != tt.want {
			t.Errorf("frame = %s, want %s", data, tt.want)
		}
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	srv := NewServer("", newFakeService(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	resp := srv.handleCommand(&Request{Command: "RELOAD"})
	if resp.Status != StatusError || !strings.Contains(resp.Error, "Unknown command") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
