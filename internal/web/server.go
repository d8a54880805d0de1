// Package web serves a read-mostly HTTP view of the overlay backend: a PNG
// preview of the monitor layout, the mirrored config as JSON, and a
// server-sent event stream of backend push events.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/render"
)

const (
	maxPreviewSide = 4096
	keepAlive      = 25 * time.Second
)

// observer is implemented by gateways that can watch events without taking
// over toggle-shield. The browser never flips the mask itself.
type observer interface {
	Observe(ctx context.Context) (<-chan gateway.Event, error)
}

// Server exposes a gateway over HTTP.
type Server struct {
	addr   string
	gw     gateway.Gateway
	logger *slog.Logger
}

// New creates a server listening on addr once Serve is called.
func New(addr string, gw gateway.Gateway, logger *slog.Logger) *Server {
	return &Server{addr: addr, gw: gw, logger: logger}
}

func (s *Server) String() string { return "web" }

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/events", s.events)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/preview.png", s.preview)
		r.Route("/api", func(r chi.Router) {
			r.Get("/state", s.state)
			r.Get("/monitors", s.monitors)
			r.Patch("/config", s.patchConfig)
		})
	})
	return r
}

// Serve listens until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", "http://"+s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("web server shutdown", "error", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

// State is the /api/state document.
type State struct {
	Config   config.Config       `json:"config"`
	Monitors []layout.Monitor    `json:"monitors"`
	Layout   []layout.LayoutRect `json:"layout"`
	Active   *layout.MonitorID   `json:"active"`
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := s.gw.GetConfig(ctx)
	if err != nil {
		s.fail(w, "get config", err)
		return
	}
	monitors, rects, active, err := s.snapshot(ctx)
	if err != nil {
		s.fail(w, "load monitors", err)
		return
	}
	st := State{Config: cfg, Monitors: monitors, Layout: rects}
	if active != "" {
		st.Active = &active
	}
	writeJSON(w, st)
}

func (s *Server) monitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := s.gw.GetMonitorInfo(r.Context())
	if err != nil {
		s.fail(w, "get monitors", err)
		return
	}
	if monitors == nil {
		monitors = []layout.Monitor{}
	}
	writeJSON(w, monitors)
}

// preview renders the layout as a PNG. width and height default to the
// 400x160 layout viewport.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	width, err := dimension(r, "width", layout.ContainerWidth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := dimension(r, "height", layout.ContainerHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	lang := i18n.Default
	if code := r.URL.Query().Get("lang"); code != "" {
		lang = i18n.Parse(code)
	} else if cfg, err := s.gw.GetConfig(ctx); err == nil {
		lang = i18n.Parse(cfg.Language)
	}

	_, rects, active, err := s.snapshot(ctx)
	if err != nil {
		s.fail(w, "load monitors", err)
		return
	}

	raster, err := render.NewRaster(width, height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	render.NewRenderer(lang).Draw(raster, rects, active)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := raster.EncodePNG(w); err != nil {
		s.logger.Warn("preview encode failed", "error", err)
	}
}

// ConfigPatch carries the fields to change; absent fields are left alone.
type ConfigPatch struct {
	Opacity           *float64 `json:"opacity,omitempty"`
	Enabled           *bool    `json:"enabled,omitempty"`
	AutoStart         *bool    `json:"auto_start,omitempty"`
	AnimationDuration *int     `json:"animation_duration,omitempty"`
	Language          *string  `json:"language,omitempty"`
}

func (s *Server) patchConfig(w http.ResponseWriter, r *http.Request) {
	var p ConfigPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		http.Error(w, fmt.Sprintf("invalid config patch: %v", err), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	steps := []struct {
		set   bool
		field string
		apply func() error
	}{
		{p.Language != nil, "language", func() error { return s.gw.UpdateLanguage(ctx, *p.Language) }},
		{p.Opacity != nil, "opacity", func() error { return s.gw.UpdateOpacity(ctx, config.ClampOpacity(*p.Opacity)) }},
		{p.Enabled != nil, "enabled", func() error { return s.gw.UpdateEnabled(ctx, *p.Enabled) }},
		{p.AutoStart != nil, "auto_start", func() error { return s.gw.UpdateAutoStart(ctx, *p.AutoStart) }},
		{p.AnimationDuration != nil, "animation_duration", func() error { return s.gw.UpdateAnimationDuration(ctx, *p.AnimationDuration) }},
	}
	for _, step := range steps {
		if !step.set {
			continue
		}
		if err := step.apply(); err != nil {
			s.fail(w, "update "+step.field, err)
			return
		}
	}

	cfg, err := s.gw.GetConfig(ctx)
	if err != nil {
		s.fail(w, "get config", err)
		return
	}
	writeJSON(w, cfg)
}

// events relays backend push events as server-sent events.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	subscribe := s.gw.Subscribe
	if o, ok := s.gw.(observer); ok {
		subscribe = o.Observe
	}
	events, err := subscribe(ctx)
	if err != nil {
		s.fail(w, "subscribe", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			writeSSE(w, string(ev.Kind), ev.MonitorID)
			flusher.Flush()
		case <-ticker.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (s *Server) snapshot(ctx context.Context) ([]layout.Monitor, []layout.LayoutRect, layout.MonitorID, error) {
	monitors, err := s.gw.GetMonitorInfo(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	rects, err := s.gw.GetMonitorLayout(ctx, gateway.ContainerWidth, gateway.ContainerHeight)
	if err != nil {
		return nil, nil, "", err
	}
	active, _, err := s.gw.GetCurrentMonitor(ctx)
	if err != nil {
		// The preview is still useful without a highlight.
		s.logger.Debug("current monitor unavailable", "error", err)
		active = ""
	}
	if monitors == nil {
		monitors = []layout.Monitor{}
	}
	if rects == nil {
		rects = []layout.LayoutRect{}
	}
	return monitors, rects, active, nil
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Warn("web request failed", "op", op, "error", err)
	http.Error(w, fmt.Sprintf("%s: %v", op, err), http.StatusBadGateway)
}

func dimension(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > maxPreviewSide {
		return 0, fmt.Errorf("%s must be an integer in 1..%d", name, maxPreviewSide)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	_, _ = w.Write([]byte("data: " + data + "\n\n"))
}
