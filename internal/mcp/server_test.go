package mcp

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/layout"
)

type fakeGateway struct {
	cfg       config.Config
	monitors  []layout.Monitor
	active    layout.MonitorID
	monErr    error
	updateErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		cfg: config.DefaultConfig(),
		monitors: []layout.Monitor{
			{ID: "monitor_0", Name: "DP-1", ResolutionWidth: 2560, ResolutionHeight: 1440},
			{ID: "monitor_1", Name: "DP-2", X: 2560, ResolutionWidth: 1920, ResolutionHeight: 1080},
		},
		active: "monitor_0",
	}
}

func (f *fakeGateway) GetConfig(context.Context) (config.Config, error) { return f.cfg, nil }

func (f *fakeGateway) GetMonitorInfo(context.Context) ([]layout.Monitor, error) {
	return f.monitors, f.monErr
}

func (f *fakeGateway) GetMonitorLayout(_ context.Context, w, h float64) ([]layout.LayoutRect, error) {
	if f.monErr != nil {
		return nil, f.monErr
	}
	return layout.Normalize(f.monitors, w, h), nil
}

func (f *fakeGateway) GetCurrentMonitor(context.Context) (layout.MonitorID, bool, error) {
	return f.active, f.active != "", nil
}

func (f *fakeGateway) UpdateOpacity(_ context.Context, v float64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cfg.Opacity = v
	return nil
}

func (f *fakeGateway) UpdateEnabled(_ context.Context, v bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cfg.Enabled = v
	return nil
}

func (f *fakeGateway) UpdateAutoStart(_ context.Context, v bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cfg.AutoStart = v
	return nil
}

func (f *fakeGateway) UpdateAnimationDuration(_ context.Context, v int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cfg.AnimationDuration = v
	return nil
}

func (f *fakeGateway) UpdateLanguage(_ context.Context, v string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cfg.Language = v
	return nil
}

func (f *fakeGateway) Subscribe(context.Context) (<-chan gateway.Event, error) {
	return nil, errors.New("not supported")
}

func newTestServer(gw gateway.Gateway) *Server {
	return NewServer(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetStatus(t *testing.T) {
	gw := newFakeGateway()
	gw.cfg.Language = "en"
	s := newTestServer(gw)

	_, out, err := s.handleGetStatus(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	if out.MonitorCount != 2 || out.ActiveMonitor != "monitor_0" {
		t.Fatalf("status = %+v", out)
	}
	if out.Summary != "Detected 2 monitors" {
		t.Fatalf("summary = %q", out.Summary)
	}
}

func TestGetStatus_DetectionFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.cfg.Language = "en"
	gw.monErr = errors.New("randr unavailable")
	s := newTestServer(gw)

	_, out, err := s.handleGetStatus(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	if out.Summary != "Detection failed: randr unavailable" {
		t.Fatalf("summary = %q", out.Summary)
	}
}

func TestListMonitorsAndLayout(t *testing.T) {
	s := newTestServer(newFakeGateway())
	ctx := context.Background()

	_, mon, err := s.handleListMonitors(ctx, nil, EmptyInput{})
	if err != nil || len(mon.Monitors) != 2 || mon.Active != "monitor_0" {
		t.Fatalf("list_monitors = %+v, %v", mon, err)
	}

	_, lay, err := s.handleGetLayout(ctx, nil, GetLayoutInput{})
	if err != nil || len(lay.Rects) != 2 {
		t.Fatalf("get_layout = %+v, %v", lay, err)
	}
	if lay.Rects[0].X != layout.Margin {
		t.Fatalf("layout not anchored at margin: %+v", lay.Rects[0])
	}

	if _, _, err := s.handleGetLayout(ctx, nil, GetLayoutInput{Width: -1}); err == nil {
		t.Fatal("expected error for negative width")
	}
}

func TestSetters(t *testing.T) {
	gw := newFakeGateway()
	s := newTestServer(gw)
	ctx := context.Background()

	_, cfg, err := s.handleSetOpacity(ctx, nil, SetOpacityInput{Opacity: 2})
	if err != nil || cfg.Opacity != 1 {
		t.Fatalf("set_opacity = %+v, %v", cfg, err)
	}
	_, cfg, err = s.handleSetEnabled(ctx, nil, SetEnabledInput{Enabled: false})
	if err != nil || cfg.Enabled {
		t.Fatalf("set_enabled = %+v, %v", cfg, err)
	}
	_, cfg, err = s.handleSetAutoStart(ctx, nil, SetAutoStartInput{AutoStart: true})
	if err != nil || !cfg.AutoStart {
		t.Fatalf("set_auto_start = %+v, %v", cfg, err)
	}
	_, cfg, err = s.handleSetAnimation(ctx, nil, SetAnimationInput{Duration: 200})
	if err != nil || cfg.AnimationDuration != 200 {
		t.Fatalf("set_animation_duration = %+v, %v", cfg, err)
	}
	_, cfg, err = s.handleSetLanguage(ctx, nil, SetLanguageInput{Language: "fr"})
	if err != nil || cfg.Language != "fr" {
		t.Fatalf("set_language = %+v, %v", cfg, err)
	}
}

func TestSetters_Validation(t *testing.T) {
	gw := newFakeGateway()
	s := newTestServer(gw)
	ctx := context.Background()

	if _, _, err := s.handleSetAnimation(ctx, nil, SetAnimationInput{Duration: 250}); err == nil {
		t.Error("expected invalid duration error")
	}
	if _, _, err := s.handleSetLanguage(ctx, nil, SetLanguageInput{Language: "it"}); err == nil {
		t.Error("expected unsupported language error")
	}

	gw.updateErr = errors.New("daemon error: read-only config")
	if _, _, err := s.handleSetEnabled(ctx, nil, SetEnabledInput{Enabled: false}); err == nil {
		t.Error("expected backend rejection to surface")
	}
	if !gw.cfg.Enabled {
		t.Error("config changed despite rejection")
	}
}

func TestRenderPreview(t *testing.T) {
	s := newTestServer(newFakeGateway())

	res, _, err := s.handleRenderPreview(context.Background(), nil, RenderPreviewInput{Width: 320, Height: 128})
	if err != nil {
		t.Fatalf("render_preview: %v", err)
	}
	if len(res.Content) != 2 {
		t.Fatalf("content = %d items", len(res.Content))
	}
	img, ok := res.Content[0].(*mcpsdk.ImageContent)
	if !ok || img.MIMEType != "image/png" {
		t.Fatalf("first content = %T", res.Content[0])
	}
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 320 || b.Dy() != 128 {
		t.Fatalf("bounds = %v", b)
	}
	text, ok := res.Content[1].(*mcpsdk.TextContent)
	if !ok || text.Text != "2 monitor(s), active monitor_0" {
		t.Fatalf("caption = %+v", res.Content[1])
	}
}

func TestRenderPreview_NoMonitors(t *testing.T) {
	gw := newFakeGateway()
	gw.monitors = nil
	gw.active = ""
	s := newTestServer(gw)

	res, _, err := s.handleRenderPreview(context.Background(), nil, RenderPreviewInput{Lang: "en"})
	if err != nil {
		t.Fatalf("render_preview: %v", err)
	}
	text := res.Content[1].(*mcpsdk.TextContent)
	if text.Text != "No monitors detected" {
		t.Fatalf("caption = %q", text.Text)
	}
}
