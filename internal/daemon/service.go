package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/ipc"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/platform"
)

// monitorCacheTTL bounds how often the pointer watcher re-enumerates displays.
const monitorCacheTTL = time.Second

// Service is the daemon's backend state: the config store, the display
// backend, the active monitor and the event broker.
type Service struct {
	store     *config.Store
	displays  platform.Backend
	autostart Autostarter
	broker    *Broker
	logger    *slog.Logger
	started   time.Time

	mu        sync.Mutex
	monitors  []layout.Monitor
	fetchedAt time.Time
	active    layout.MonitorID
}

var _ ipc.Service = (*Service)(nil)

// NewService wires the daemon state. autostart may be nil when the platform
// has no autostart mechanism.
func NewService(store *config.Store, displays platform.Backend, autostart Autostarter, broker *Broker, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		displays:  displays,
		autostart: autostart,
		broker:    broker,
		logger:    logger,
		started:   time.Now(),
	}
}

// Config returns the persisted config.
func (s *Service) Config() (config.Config, error) {
	f, err := s.store.Load()
	if err != nil {
		return config.Config{}, err
	}
	return f.Config, nil
}

// Monitors enumerates displays and refreshes the cache.
func (s *Service) Monitors() ([]layout.Monitor, error) {
	displays, err := s.displays.Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	monitors := platform.Monitors(displays)

	s.mu.Lock()
	s.monitors = monitors
	s.fetchedAt = time.Now()
	if s.active != "" && !containsMonitor(monitors, s.active) {
		s.active = ""
	}
	s.mu.Unlock()
	return monitors, nil
}

// cachedMonitors returns monitors no older than monitorCacheTTL.
func (s *Service) cachedMonitors() ([]layout.Monitor, error) {
	s.mu.Lock()
	if s.monitors != nil && time.Since(s.fetchedAt) < monitorCacheTTL {
		m := s.monitors
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()
	return s.Monitors()
}

// Layout normalizes the current monitors into the requested container.
func (s *Service) Layout(containerWidth, containerHeight float64) ([]layout.LayoutRect, error) {
	monitors, err := s.Monitors()
	if err != nil {
		return nil, err
	}
	return layout.Normalize(monitors, containerWidth, containerHeight), nil
}

// CurrentMonitor returns the monitor last seen under the focus point.
func (s *Service) CurrentMonitor() (layout.MonitorID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != ""
}

// SetActive records the active monitor and notifies subscribers.
func (s *Service) SetActive(id layout.MonitorID) {
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()
	s.broker.Publish(gateway.Event{Kind: gateway.EventMonitorChanged, MonitorID: id})
}

func (s *Service) UpdateOpacity(opacity float64) error {
	return s.update("opacity", func(c *config.Config) error {
		c.Opacity = config.ClampOpacity(opacity)
		return nil
	})
}

func (s *Service) UpdateEnabled(enabled bool) error {
	return s.update("enabled", func(c *config.Config) error {
		c.Enabled = enabled
		return nil
	})
}

// UpdateAutoStart registers or removes the session autostart entry, then
// persists the flag. Nothing is persisted if registration fails.
func (s *Service) UpdateAutoStart(autoStart bool) error {
	if s.autostart == nil {
		return fmt.Errorf("auto start is not supported on this platform")
	}
	if err := s.autostart.SetEnabled(autoStart); err != nil {
		return err
	}
	return s.update("auto_start", func(c *config.Config) error {
		c.AutoStart = autoStart
		return nil
	})
}

func (s *Service) UpdateAnimationDuration(duration int) error {
	return s.update("animation_duration", func(c *config.Config) error {
		if !config.ValidAnimationDuration(duration) {
			return &config.ValidationError{Path: "animation_duration", Err: fmt.Errorf("unsupported duration %d", duration)}
		}
		c.AnimationDuration = duration
		return nil
	})
}

func (s *Service) UpdateLanguage(language string) error {
	return s.update("language", func(c *config.Config) error {
		if !i18n.Supported(language) {
			return &config.ValidationError{Path: "language", Err: fmt.Errorf("unsupported language %q", language)}
		}
		c.Language = language
		return nil
	})
}

func (s *Service) update(field string, fn func(*config.Config) error) error {
	cfg, err := s.store.Update(fn)
	if err != nil {
		return err
	}
	s.logger.Info("config updated", "field", field, "config", cfg)
	return nil
}

// ToggleShield asks connected UIs to flip the enabled flag. With no UI
// connected (observers do not count) the daemon flips it itself.
func (s *Service) ToggleShield() {
	if s.broker.Controllers() > 0 {
		s.broker.Publish(gateway.Event{Kind: gateway.EventToggleShield})
		return
	}
	cfg, err := s.store.Update(func(c *config.Config) error {
		c.Enabled = !c.Enabled
		return nil
	})
	if err != nil {
		s.logger.Warn("toggle shield failed", "error", err)
		return
	}
	s.logger.Info("shield toggled without UI", "enabled", cfg.Enabled)
}

// Status summarizes the daemon for `monofocus status`.
func (s *Service) Status() ipc.StatusData {
	s.mu.Lock()
	count := len(s.monitors)
	active := s.active
	s.mu.Unlock()

	enabled := false
	if cfg, err := s.Config(); err == nil {
		enabled = cfg.Enabled
	}
	return ipc.StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		MonitorCount:  count,
		ActiveMonitor: active,
		Subscribers:   s.broker.Count(),
		Enabled:       enabled,
	}
}

// Subscribe registers an event subscriber.
func (s *Service) Subscribe(observer bool) (<-chan gateway.Event, func()) {
	return s.broker.Subscribe(observer)
}

func containsMonitor(monitors []layout.Monitor, id layout.MonitorID) bool {
	for _, m := range monitors {
		if m.ID == id {
			return true
		}
	}
	return false
}
