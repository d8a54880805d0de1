// Package controller keeps the displayed monitor layout and configuration in
// step with the backend.
//
// The Model follows the bubbletea update loop: every state change happens in
// Update, and every gateway call runs inside a tea.Cmd whose result comes back
// as a message. Three independent channels feed it: the startup load, a
// periodic refresh timer, and the backend's push-event subscription. A failure
// in one never stops the others.
package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/mirror"
	"github.com/1broseidon/monofocus/internal/render"
)

const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
)

var errNoGateway = errors.New("no backend gateway configured")

// Options configures a Model.
type Options struct {
	Gateway         gateway.Gateway
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	Logger          *slog.Logger
	// Context bounds the event subscription. Defaults to context.Background.
	Context context.Context
}

// Model is the sync controller state. It is owned by a single event loop.
type Model struct {
	gw       gateway.Gateway
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	ctx      context.Context

	Mirror *mirror.Mirror

	monitors []layout.Monitor
	rects    []layout.LayoutRect
	active   layout.MonitorID
	status   Status

	loadSeq     uint64
	loading     bool
	// activeSeq counts monitor-changed events so a fetch issued before the
	// latest one cannot replace the pushed id.
	activeSeq uint64
	// toggleQueued holds a toggle received before the first config load,
	// when the value to flip is still unknown.
	toggleQueued bool
	subscribed  bool
	subscribing bool
}

// New returns a Model that has not started any I/O yet.
func New(opts Options) Model {
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		gw:       opts.Gateway,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		ctx:      ctx,
		Mirror:   mirror.New(),
		status:   Status{Kind: StatusDetecting},
	}
	// Init subscribes immediately.
	m.subscribing = true
	return m
}

// User intents. Hosts send these through the program; push events and the
// refresh timer are handled internally.
type (
	RefreshMsg       struct{}
	SetOpacityMsg    struct{ Opacity float64 }
	SetEnabledMsg    struct{ Enabled bool }
	ToggleEnabledMsg struct{}
	SetAutoStartMsg  struct{ AutoStart bool }
	SetAnimationMsg  struct{ Duration int }
	SetLanguageMsg   struct{ Lang i18n.Lang }
)

type configMsg struct {
	cfg config.Config
	err error
}

type monitorsMsg struct {
	seq       uint64
	activeSeq uint64
	monitors  []layout.Monitor
	rects     []layout.LayoutRect
	active    layout.MonitorID
	hasActive bool
	err       error
}

type tickMsg time.Time

type subscribedMsg struct {
	events <-chan gateway.Event
	err    error
}

type eventMsg struct {
	event  gateway.Event
	events <-chan gateway.Event
}

type subscriptionClosedMsg struct{}

type mutationMsg struct {
	field  mirror.FieldName
	seq    uint64
	err    error
	settle func(error) bool
	after  tea.Cmd
}

// Init starts the startup load, the refresh timer and the subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchConfig(), m.tick(), m.subscribe())
}

// Update applies msg and returns the follow-up command.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case configMsg:
		if msg.err != nil {
			m.logger.Error("failed to load config", "error", msg.err)
			// A monitor result already on screen is more useful than a
			// repeated init failure from the retry.
			if m.status.Kind == StatusDetecting || m.status.Kind == StatusInitFailed {
				m.status = Status{Kind: StatusInitFailed, Err: msg.err}
			}
			return m, nil
		}
		if m.Mirror.Loaded() {
			return m, nil
		}
		m.Mirror.ApplyConfig(msg.cfg)
		var load tea.Cmd
		m, load = m.startLoad()
		if m.toggleQueued {
			m.toggleQueued = false
			return m, tea.Batch(load, m.setEnabled(!m.Mirror.Enabled.Value()))
		}
		return m, load

	case monitorsMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.logger.Warn("failed to load monitors", "error", msg.err)
			m.status = Status{Kind: StatusDetectFailed, Err: msg.err}
			return m, nil
		}
		m.monitors = msg.monitors
		m.rects = msg.rects
		if msg.activeSeq == m.activeSeq {
			m.active = ""
			if msg.hasActive {
				m.active = msg.active
			}
		}
		if len(m.rects) == 0 {
			m.status = Status{Kind: StatusNoMonitors}
		} else {
			m.status = Status{Kind: StatusDetected, Count: len(m.monitors)}
		}
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tick()}
		if !m.Mirror.Loaded() {
			cmds = append(cmds, m.fetchConfig())
		}
		var load tea.Cmd
		m, load = m.startLoad()
		cmds = append(cmds, load)
		if !m.subscribed && !m.subscribing {
			m.subscribing = true
			cmds = append(cmds, m.subscribe())
		}
		return m, tea.Batch(cmds...)

	case RefreshMsg:
		return m.startLoad()

	case subscribedMsg:
		m.subscribing = false
		if msg.err != nil {
			m.logger.Warn("event subscription failed", "error", msg.err)
			return m, nil
		}
		m.subscribed = true
		return m, waitForEvent(msg.events)

	case subscriptionClosedMsg:
		m.subscribed = false
		m.logger.Info("event subscription closed")
		return m, nil

	case eventMsg:
		var cmd tea.Cmd
		m, cmd = m.handleEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(msg.events))

	case mutationMsg:
		if !msg.settle(msg.err) {
			m.logger.Debug("discarded stale response", "field", msg.field, "seq", msg.seq)
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("update rejected, rolled back", "field", msg.field, "seq", msg.seq, "error", msg.err)
			return m, nil
		}
		return m, msg.after

	case SetOpacityMsg:
		e := m.Mirror.SetOpacity(msg.Opacity)
		return m, m.mutate(mirror.FieldOpacity, e.Seq, func(ctx context.Context) error {
			return m.gw.UpdateOpacity(ctx, e.Value)
		}, func(err error) bool { return m.Mirror.Opacity.Resolve(e, err) }, nil)

	case SetEnabledMsg:
		return m, m.setEnabled(msg.Enabled)

	case ToggleEnabledMsg:
		return m.toggleEnabled()

	case SetAutoStartMsg:
		e := m.Mirror.AutoStart.ApplyOptimistic(msg.AutoStart)
		return m, m.mutate(mirror.FieldAutoStart, e.Seq, func(ctx context.Context) error {
			return m.gw.UpdateAutoStart(ctx, e.Value)
		}, func(err error) bool { return m.Mirror.AutoStart.Resolve(e, err) }, nil)

	case SetAnimationMsg:
		e := m.Mirror.Animation.ApplyOptimistic(msg.Duration)
		return m, m.mutate(mirror.FieldAnimation, e.Seq, func(ctx context.Context) error {
			return m.gw.UpdateAnimationDuration(ctx, e.Value)
		}, func(err error) bool { return m.Mirror.Animation.Resolve(e, err) }, nil)

	case SetLanguageMsg:
		e := m.Mirror.Language.ApplyOptimistic(msg.Lang)
		return m, m.mutate(mirror.FieldLanguage, e.Seq, func(ctx context.Context) error {
			return m.gw.UpdateLanguage(ctx, string(e.Value))
		}, func(err error) bool { return m.Mirror.Language.Resolve(e, err) }, func() tea.Msg { return RefreshMsg{} })
	}
	return m, nil
}

func (m Model) handleEvent(ev gateway.Event) (Model, tea.Cmd) {
	switch ev.Kind {
	case gateway.EventMonitorChanged:
		// Reuses the last fetched layout; no round trip.
		m.active = ev.MonitorID
		m.activeSeq++
		return m, nil
	case gateway.EventToggleShield:
		return m.toggleEnabled()
	default:
		m.logger.Debug("ignoring unknown event", "event", ev.Kind)
		return m, nil
	}
}

func (m Model) toggleEnabled() (Model, tea.Cmd) {
	if !m.Mirror.Loaded() {
		// Two toggles before the load cancel out.
		m.toggleQueued = !m.toggleQueued
		return m, nil
	}
	return m, m.setEnabled(!m.Mirror.Enabled.Value())
}

func (m Model) setEnabled(v bool) tea.Cmd {
	e := m.Mirror.Enabled.ApplyOptimistic(v)
	return m.mutate(mirror.FieldEnabled, e.Seq, func(ctx context.Context) error {
		return m.gw.UpdateEnabled(ctx, e.Value)
	}, func(err error) bool { return m.Mirror.Enabled.Resolve(e, err) }, nil)
}

func (m Model) mutate(field mirror.FieldName, seq uint64, send func(context.Context) error, settle func(error) bool, after tea.Cmd) tea.Cmd {
	gw, ctx, timeout := m.gw, m.ctx, m.timeout
	return func() tea.Msg {
		if gw == nil {
			return mutationMsg{field: field, seq: seq, err: errNoGateway, settle: settle}
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return mutationMsg{field: field, seq: seq, err: send(reqCtx), settle: settle, after: after}
	}
}

func (m Model) startLoad() (Model, tea.Cmd) {
	m.loadSeq++
	m.loading = true
	return m, m.fetchMonitors(m.loadSeq, m.activeSeq)
}

func (m Model) fetchConfig() tea.Cmd {
	gw, ctx, timeout := m.gw, m.ctx, m.timeout
	return func() tea.Msg {
		if gw == nil {
			return configMsg{err: errNoGateway}
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		cfg, err := gw.GetConfig(reqCtx)
		return configMsg{cfg: cfg, err: err}
	}
}

func (m Model) fetchMonitors(seq, activeSeq uint64) tea.Cmd {
	gw, ctx, timeout := m.gw, m.ctx, m.timeout
	return func() tea.Msg {
		if gw == nil {
			return monitorsMsg{seq: seq, activeSeq: activeSeq, err: errNoGateway}
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		out := monitorsMsg{seq: seq, activeSeq: activeSeq}
		if out.monitors, out.err = gw.GetMonitorInfo(reqCtx); out.err != nil {
			return out
		}
		if out.rects, out.err = gw.GetMonitorLayout(reqCtx, gateway.ContainerWidth, gateway.ContainerHeight); out.err != nil {
			return out
		}
		out.active, out.hasActive, out.err = gw.GetCurrentMonitor(reqCtx)
		return out
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) subscribe() tea.Cmd {
	gw, ctx := m.gw, m.ctx
	return func() tea.Msg {
		if gw == nil {
			return subscribedMsg{err: errNoGateway}
		}
		events, err := gw.Subscribe(ctx)
		return subscribedMsg{events: events, err: err}
	}
}

func waitForEvent(events <-chan gateway.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return subscriptionClosedMsg{}
		}
		return eventMsg{event: ev, events: events}
	}
}

// Language returns the displayed locale.
func (m Model) Language() i18n.Lang { return m.Mirror.Language.Value() }

// Status returns the detection status.
func (m Model) Status() Status { return m.status }

// StatusText returns the localized detection status.
func (m Model) StatusText() string { return m.status.Text(m.Language()) }

// Monitors returns the last fetched monitors.
func (m Model) Monitors() []layout.Monitor { return m.monitors }

// Rects returns the last fetched layout.
func (m Model) Rects() []layout.LayoutRect { return m.rects }

// Active returns the active monitor id, or "" when none.
func (m Model) Active() layout.MonitorID { return m.active }

// Loading reports whether a monitor fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Frame redraws the current layout onto s.
func (m Model) Frame(s render.Surface) render.Frame {
	return render.NewRenderer(m.Language()).Draw(s, m.rects, m.active)
}
