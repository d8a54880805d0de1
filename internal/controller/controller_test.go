package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/mirror"
	"github.com/1broseidon/monofocus/internal/render"
)

var errBackend = errors.New("backend unavailable")

type fakeGateway struct {
	cfg    config.Config
	cfgErr error

	monitors  []layout.Monitor
	rects     []layout.LayoutRect
	active    layout.MonitorID
	hasActive bool
	monErr    error

	subErr error

	failOpacity map[float64]bool
	enabledErr  error
	languageErr error
	enabledSent []bool

	calls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		cfg: config.Config{Opacity: 0.5, Enabled: true, AnimationDuration: 300, Language: "en"},
		monitors: []layout.Monitor{
			{ID: "1", ResolutionWidth: 1920, ResolutionHeight: 1080},
			{ID: "2", X: 1920, ResolutionWidth: 1080, ResolutionHeight: 1920},
		},
		rects: []layout.LayoutRect{
			{ID: "1", X: 0, Y: 0, Width: 1920, Height: 1080, ResolutionWidth: 1920, ResolutionHeight: 1080},
			{ID: "2", X: 1920, Y: 0, Width: 1080, Height: 1920, ResolutionWidth: 1080, ResolutionHeight: 1920},
		},
		active:      "2",
		hasActive:   true,
		failOpacity: map[float64]bool{},
	}
}

func (f *fakeGateway) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeGateway) GetConfig(context.Context) (config.Config, error) {
	f.calls = append(f.calls, "get_config")
	return f.cfg, f.cfgErr
}

func (f *fakeGateway) GetMonitorInfo(context.Context) ([]layout.Monitor, error) {
	f.calls = append(f.calls, "get_monitor_info")
	return f.monitors, f.monErr
}

func (f *fakeGateway) GetMonitorLayout(_ context.Context, w, h float64) ([]layout.LayoutRect, error) {
	f.calls = append(f.calls, "get_monitor_layout")
	if w != gateway.ContainerWidth || h != gateway.ContainerHeight {
		return nil, errors.New("unexpected container size")
	}
	return f.rects, nil
}

func (f *fakeGateway) GetCurrentMonitor(context.Context) (layout.MonitorID, bool, error) {
	f.calls = append(f.calls, "get_current_monitor")
	return f.active, f.hasActive, nil
}

func (f *fakeGateway) UpdateOpacity(_ context.Context, v float64) error {
	f.calls = append(f.calls, "update_opacity")
	if f.failOpacity[v] {
		return errBackend
	}
	return nil
}

func (f *fakeGateway) UpdateEnabled(_ context.Context, v bool) error {
	f.calls = append(f.calls, "update_enabled")
	f.enabledSent = append(f.enabledSent, v)
	return f.enabledErr
}

func (f *fakeGateway) UpdateAutoStart(context.Context, bool) error {
	f.calls = append(f.calls, "update_auto_start")
	return nil
}

func (f *fakeGateway) UpdateAnimationDuration(context.Context, int) error {
	f.calls = append(f.calls, "update_animation_duration")
	return nil
}

func (f *fakeGateway) UpdateLanguage(context.Context, string) error {
	f.calls = append(f.calls, "update_language")
	return f.languageErr
}

func (f *fakeGateway) Subscribe(context.Context) (<-chan gateway.Event, error) {
	f.calls = append(f.calls, "subscribe")
	if f.subErr != nil {
		return nil, f.subErr
	}
	ch := make(chan gateway.Event)
	close(ch)
	return ch, nil
}

// drive runs cmd and every follow-up command to completion, feeding each
// result back through Update. Timer ticks are recorded but not fed back.
func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	var seen []tea.Msg
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		seen = append(seen, msg)
		if _, ok := msg.(tickMsg); ok {
			continue
		}
		var next tea.Cmd
		m, next = m.Update(msg)
		queue = append(queue, next)
	}
	return m, seen
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := m.Update(msg)
	m, _ = drive(t, m, cmd)
	return m
}

func newModel(gw gateway.Gateway) Model {
	return New(Options{Gateway: gw, RefreshInterval: time.Millisecond})
}

func started(t *testing.T, gw *fakeGateway) Model {
	t.Helper()
	m := newModel(gw)
	m, _ = drive(t, m, m.Init())
	return m
}

func TestStartup_LoadsConfigThenMonitors(t *testing.T) {
	gw := newFakeGateway()
	m := started(t, gw)

	if gw.calls[0] != "get_config" {
		t.Fatalf("first call = %q, want get_config", gw.calls[0])
	}
	if m.Language() != i18n.English {
		t.Fatalf("language = %q", m.Language())
	}
	if m.Mirror.Opacity.Value() != 0.5 || !m.Mirror.Enabled.Value() {
		t.Fatalf("mirror not applied: %+v", m.Mirror.Config())
	}
	if m.Status().Kind != StatusDetected || m.Status().Count != 2 {
		t.Fatalf("status = %+v", m.Status())
	}
	if m.StatusText() != "Detected 2 monitors" {
		t.Fatalf("status text = %q", m.StatusText())
	}
	if m.Active() != "2" || len(m.Rects()) != 2 {
		t.Fatalf("active=%q rects=%d", m.Active(), len(m.Rects()))
	}
	if m.Loading() {
		t.Fatal("load should be settled")
	}
}

func TestStartup_ConfigFailureSurfacesStatusAndTimerRecovers(t *testing.T) {
	gw := newFakeGateway()
	gw.cfgErr = errBackend
	m := started(t, gw)

	if m.Status().Kind != StatusInitFailed {
		t.Fatalf("status = %+v", m.Status())
	}
	if gw.count("get_monitor_info") != 0 {
		t.Fatal("monitors should not load after a config failure")
	}
	if gw.count("subscribe") != 1 {
		t.Fatal("subscription should start independently of the config fetch")
	}

	m = send(t, m, tickMsg(time.Now()))
	if m.Status().Kind != StatusDetected {
		t.Fatalf("timer should recover monitors, status = %+v", m.Status())
	}
}

func TestRefresh_FailureKeepsPreviousLayout(t *testing.T) {
	gw := newFakeGateway()
	m := started(t, gw)

	gw.monErr = errBackend
	m = send(t, m, RefreshMsg{})

	if !m.Status().Failed() {
		t.Fatalf("status = %+v", m.Status())
	}
	if len(m.Rects()) != 2 || m.Active() != "2" {
		t.Fatal("previous layout should stay on screen")
	}
}

func TestTick_AlwaysRearms(t *testing.T) {
	gw := newFakeGateway()
	gw.monErr = errBackend
	m := started(t, gw)

	m, cmd := m.Update(tickMsg(time.Now()))
	_, seen := drive(t, m, cmd)

	ticks := 0
	for _, msg := range seen {
		if _, ok := msg.(tickMsg); ok {
			ticks++
		}
	}
	if ticks != 1 {
		t.Fatalf("expected the timer to re-arm once, got %d ticks", ticks)
	}
}

func TestTick_ResubscribesAfterFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.subErr = errBackend
	m := started(t, gw)

	gw.subErr = nil
	before := gw.count("subscribe")
	m = send(t, m, tickMsg(time.Now()))
	if gw.count("subscribe") != before+1 {
		t.Fatal("tick should retry the subscription")
	}
}

func TestMonitorChanged_RerendersWithoutFetch(t *testing.T) {
	gw := newFakeGateway()
	m := started(t, gw)
	if m.Active() != "2" {
		t.Fatalf("active = %q", m.Active())
	}
	calls := len(gw.calls)

	m = send(t, m, eventMsg{
		event:  gateway.Event{Kind: gateway.EventMonitorChanged, MonitorID: "1"},
		events: closedEvents(),
	})

	if len(gw.calls) != calls {
		t.Fatalf("monitor-changed must not hit the backend, calls: %v", gw.calls[calls:])
	}
	frame := m.Frame(render.NewCells(80, 16, 400, 160))
	for _, tile := range frame.Tiles {
		if tile.Active != (tile.ID == "1") {
			t.Fatalf("tile %s active = %v", tile.ID, tile.Active)
		}
	}
}

func TestOpacityRejection_RevertsToPriorValue(t *testing.T) {
	gw := newFakeGateway()
	gw.failOpacity[0.7] = true
	m := started(t, gw)

	m, cmd := m.Update(SetOpacityMsg{Opacity: 0.7})
	if m.Mirror.Opacity.Value() != 0.7 || m.Mirror.Opacity.State() != mirror.Pending {
		t.Fatalf("optimistic value not shown: %v %s", m.Mirror.Opacity.Value(), m.Mirror.Opacity.State())
	}
	m, _ = drive(t, m, cmd)

	if m.Mirror.Opacity.Value() != 0.5 {
		t.Fatalf("opacity = %v, want 0.5", m.Mirror.Opacity.Value())
	}
	if m.Mirror.Opacity.State() != mirror.RolledBack {
		t.Fatalf("state = %s", m.Mirror.Opacity.State())
	}
}

func TestOpacity_StaleResponseDoesNotOverwriteNewerEdit(t *testing.T) {
	gw := newFakeGateway()
	gw.failOpacity[0.6] = true
	m := started(t, gw)

	m, first := m.Update(SetOpacityMsg{Opacity: 0.6})
	m, second := m.Update(SetOpacityMsg{Opacity: 0.9})

	// Responses arrive out of order.
	m, _ = drive(t, m, second)
	m, _ = drive(t, m, first)

	if m.Mirror.Opacity.Value() != 0.9 || m.Mirror.Opacity.State() != mirror.Confirmed {
		t.Fatalf("opacity = %v (%s), want confirmed 0.9", m.Mirror.Opacity.Value(), m.Mirror.Opacity.State())
	}
}

func TestOpacity_TwoRejectedEditsReturnToBackendValue(t *testing.T) {
	gw := newFakeGateway()
	gw.failOpacity[0.6] = true
	gw.failOpacity[0.7] = true
	m := started(t, gw)

	m, first := m.Update(SetOpacityMsg{Opacity: 0.6})
	m, second := m.Update(SetOpacityMsg{Opacity: 0.7})
	m, _ = drive(t, m, first)
	m, _ = drive(t, m, second)

	if m.Mirror.Opacity.Value() != 0.5 || m.Mirror.Opacity.State() != mirror.RolledBack {
		t.Fatalf("opacity = %v (%s), want rolled back to 0.5", m.Mirror.Opacity.Value(), m.Mirror.Opacity.State())
	}
}

func TestToggleBeforeLoad_FlipsBackendValue(t *testing.T) {
	toggleEvent := eventMsg{event: gateway.Event{Kind: gateway.EventToggleShield}, events: closedEvents()}

	tests := []struct {
		name     string
		toggles  []tea.Msg
		wantSent []bool
		want     bool
	}{
		{"hotkey event", []tea.Msg{toggleEvent}, []bool{true}, true},
		{"user intent", []tea.Msg{ToggleEnabledMsg{}}, []bool{true}, true},
		{"two toggles cancel", []tea.Msg{ToggleEnabledMsg{}, toggleEvent}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.cfg.Enabled = false
			m := newModel(gw)

			for _, msg := range tt.toggles {
				m = send(t, m, msg)
			}
			if gw.count("update_enabled") != 0 {
				t.Fatal("toggle must wait for the config load")
			}

			m, _ = drive(t, m, m.Init())

			if len(gw.enabledSent) != len(tt.wantSent) {
				t.Fatalf("sent %v, want %v", gw.enabledSent, tt.wantSent)
			}
			for i := range tt.wantSent {
				if gw.enabledSent[i] != tt.wantSent[i] {
					t.Fatalf("sent %v, want %v", gw.enabledSent, tt.wantSent)
				}
			}
			if m.Mirror.Enabled.Value() != tt.want {
				t.Fatalf("enabled = %v, want %v", m.Mirror.Enabled.Value(), tt.want)
			}
		})
	}
}

func TestTick_RetriesConfigAndAppliesQueuedToggle(t *testing.T) {
	gw := newFakeGateway()
	gw.cfgErr = errBackend
	gw.cfg.Enabled = false
	m := started(t, gw)

	m = send(t, m, ToggleEnabledMsg{})
	gw.cfgErr = nil
	m = send(t, m, tickMsg(time.Now()))

	if gw.count("get_config") != 2 {
		t.Fatalf("get_config calls = %d, want 2", gw.count("get_config"))
	}
	if !m.Mirror.Loaded() || !m.Mirror.Enabled.Value() || m.Mirror.Enabled.State() != mirror.Confirmed {
		t.Fatalf("enabled = %v (%s)", m.Mirror.Enabled.Value(), m.Mirror.Enabled.State())
	}

	// Once loaded, ticks stop fetching config.
	m = send(t, m, tickMsg(time.Now()))
	if gw.count("get_config") != 2 {
		t.Fatal("config should not be refetched after a successful load")
	}
}

func TestMonitorChanged_WinsOverOlderFetch(t *testing.T) {
	gw := newFakeGateway()
	m := started(t, gw)

	// The fetch starts before the event and reports the older active id.
	m, load := m.Update(RefreshMsg{})
	m = send(t, m, eventMsg{
		event:  gateway.Event{Kind: gateway.EventMonitorChanged, MonitorID: "1"},
		events: closedEvents(),
	})
	m, _ = drive(t, m, load)

	if m.Active() != "1" {
		t.Fatalf("active = %q, want the pushed id 1", m.Active())
	}
	if m.Status().Kind != StatusDetected || len(m.Rects()) != 2 {
		t.Fatalf("layout should still refresh: status=%+v", m.Status())
	}

	// A fetch issued after the event is authoritative again.
	gw.active = "2"
	m = send(t, m, RefreshMsg{})
	if m.Active() != "2" {
		t.Fatalf("active = %q, want 2", m.Active())
	}
}

func TestToggleShield_SharesMutationPath(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantEnabled bool
		wantState   mirror.State
	}{
		{"accepted", nil, false, mirror.Confirmed},
		{"rejected", errBackend, true, mirror.RolledBack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.enabledErr = tt.err
			m := started(t, gw)

			m = send(t, m, eventMsg{
				event:  gateway.Event{Kind: gateway.EventToggleShield},
				events: closedEvents(),
			})

			if gw.count("update_enabled") != 1 {
				t.Fatalf("expected one update_enabled call, got %d", gw.count("update_enabled"))
			}
			if m.Mirror.Enabled.Value() != tt.wantEnabled || m.Mirror.Enabled.State() != tt.wantState {
				t.Fatalf("enabled = %v (%s)", m.Mirror.Enabled.Value(), m.Mirror.Enabled.State())
			}
		})
	}
}

func TestLanguageChange(t *testing.T) {
	t.Run("success refetches monitors", func(t *testing.T) {
		gw := newFakeGateway()
		m := started(t, gw)
		before := gw.count("get_monitor_info")

		m = send(t, m, SetLanguageMsg{Lang: i18n.German})

		if m.Language() != i18n.German {
			t.Fatalf("language = %q", m.Language())
		}
		if gw.count("get_monitor_info") != before+1 {
			t.Fatal("language change should refetch monitors")
		}
	})

	t.Run("failure rolls back", func(t *testing.T) {
		gw := newFakeGateway()
		gw.languageErr = errBackend
		m := started(t, gw)
		before := gw.count("get_monitor_info")

		m = send(t, m, SetLanguageMsg{Lang: i18n.German})

		if m.Language() != i18n.English {
			t.Fatalf("language = %q, want rollback to en", m.Language())
		}
		if gw.count("get_monitor_info") != before {
			t.Fatal("failed language change should not refetch")
		}
	})
}

func TestMutations_RollbackIsPerField(t *testing.T) {
	gw := newFakeGateway()
	gw.enabledErr = errBackend
	m := started(t, gw)

	m, c1 := m.Update(SetAnimationMsg{Duration: 500})
	m, c2 := m.Update(SetEnabledMsg{Enabled: false})
	m, c3 := m.Update(SetAutoStartMsg{AutoStart: true})
	m, _ = drive(t, m, tea.Batch(c1, c2, c3))

	if m.Mirror.Animation.Value() != 500 || !m.Mirror.AutoStart.Value() {
		t.Fatalf("accepted edits lost: %+v", m.Mirror.Config())
	}
	if !m.Mirror.Enabled.Value() {
		t.Fatal("rejected enabled edit should roll back to true")
	}
}

func TestNoMonitors_Status(t *testing.T) {
	gw := newFakeGateway()
	gw.monitors, gw.rects, gw.hasActive = nil, nil, false
	m := started(t, gw)

	if m.Status().Kind != StatusNoMonitors {
		t.Fatalf("status = %+v", m.Status())
	}
	frame := m.Frame(render.NewCells(60, 10, 400, 160))
	if !frame.Empty() {
		t.Fatal("expected placeholder frame")
	}
}

func TestStatusText_Localized(t *testing.T) {
	tests := []struct {
		status Status
		lang   i18n.Lang
		want   string
	}{
		{Status{Kind: StatusDetecting}, i18n.English, "Detecting..."},
		{Status{Kind: StatusDetected, Count: 3}, i18n.English, "Detected 3 monitors"},
		{Status{Kind: StatusNoMonitors}, i18n.English, "No monitors detected"},
		{Status{Kind: StatusDetectFailed, Err: errBackend}, i18n.English, "Detection failed: backend unavailable"},
	}
	for _, tt := range tests {
		if got := tt.status.Text(tt.lang); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func closedEvents() <-chan gateway.Event {
	ch := make(chan gateway.Event)
	close(ch)
	return ch
}
