package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/hotkeys"
	"github.com/1broseidon/monofocus/internal/ipc"
	"github.com/1broseidon/monofocus/internal/platform"
	"github.com/1broseidon/monofocus/internal/runtimepath"
)

// ErrAlreadyRunning is returned when another daemon answers on the socket.
var ErrAlreadyRunning = errors.New("daemon already running")

// Options configures Run.
type Options struct {
	// ConfigPath overrides the default config location.
	ConfigPath string
	// SocketPath overrides the default IPC socket location.
	SocketPath string
	// Logger defaults to a text handler on stderr at the configured level.
	Logger *slog.Logger
}

// Run starts the daemon and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	store := config.NewStore(configPath)
	file, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(file.Daemon.LogLevel)
	}
	logger.Info("configuration loaded", "path", configPath, "config", file.Config)

	socketPath := opts.SocketPath
	if socketPath == "" {
		if socketPath, err = runtimepath.SocketPath(); err != nil {
			return err
		}
	}
	if ipc.NewClientWithPath(socketPath).Ping(ctx) == nil {
		return fmt.Errorf("%w on %s", ErrAlreadyRunning, socketPath)
	}

	backend, err := platform.New()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Close()

	var autostart Autostarter
	if xdg, err := NewXDGAutostart(); err != nil {
		logger.Warn("auto start unavailable", "error", err)
	} else {
		autostart = xdg
	}

	broker := NewBroker()
	svc := NewService(store, backend, autostart, broker, logger)

	if monitors, err := svc.Monitors(); err != nil {
		logger.Warn("initial display enumeration failed", "error", err)
	} else {
		logger.Info("displays detected", "count", len(monitors))
	}

	removePID := writePIDFile(logger)
	defer removePID()

	sup := suture.New("monofocus", suture.Spec{
		EventHook: func(ev suture.Event) {
			logger.Warn("supervisor event", "event", ev.String())
		},
	})

	sup.Add(ipc.NewServer(socketPath, svc, logger))
	sup.Add(NewPointerWatcher(WatcherConfig{
		Interval: file.Daemon.PointerPollInterval(),
		Logger:   logger,
	}, backend.FocusPoint, svc.cachedMonitors, svc.SetActive))

	if file.Daemon.ToggleHotkey != "" {
		h := hotkeys.NewHandler(backend, logger)
		if err := h.Register(file.Daemon.ToggleHotkey, svc.ToggleShield); err != nil {
			logger.Warn("failed to register toggle hotkey", "hotkey", file.Daemon.ToggleHotkey, "error", err)
		} else {
			logger.Info("toggle hotkey registered", "hotkey", file.Daemon.ToggleHotkey)
			sup.Add(h)
		}
	}

	logger.Info("monofocus daemon started")
	err = sup.Serve(ctx)
	logger.Info("monofocus daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// NewLogger returns a stderr text logger at level ("debug", "info", "warn"
// or "error"). Unknown levels fall back to info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}

func writePIDFile(logger *slog.Logger) func() {
	path, err := runtimepath.PIDPath()
	if err != nil {
		logger.Warn("pid file unavailable", "error", err)
		return func() {}
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(pid+"\n"), 0600); err != nil {
		logger.Warn("failed to write pid file", "path", path, "error", err)
		return func() {}
	}
	return func() {
		// Leave the file alone if a newer daemon replaced it.
		if data, err := os.ReadFile(path); err == nil && string(data) == pid+"\n" {
			os.Remove(path)
		}
	}
}
