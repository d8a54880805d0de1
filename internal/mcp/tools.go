package mcp

import (
	"bytes"
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/controller"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/render"
)

func (s *Server) handleGetStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	cfg, err := s.gw.GetConfig(ctx)
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("get config: %w", err)
	}
	lang := i18n.Parse(cfg.Language)

	out := StatusOutput{Config: cfg}
	monitors, err := s.gw.GetMonitorInfo(ctx)
	if err != nil {
		out.Summary = controller.Status{Kind: controller.StatusDetectFailed, Err: err}.Text(lang)
		return nil, out, nil
	}
	out.MonitorCount = len(monitors)
	if id, ok, err := s.gw.GetCurrentMonitor(ctx); err == nil && ok {
		out.ActiveMonitor = id
	}

	st := controller.Status{Kind: controller.StatusDetected, Count: len(monitors)}
	if len(monitors) == 0 {
		st = controller.Status{Kind: controller.StatusNoMonitors}
	}
	out.Summary = st.Text(lang)
	return nil, out, nil
}

func (s *Server) handleListMonitors(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	monitors, err := s.gw.GetMonitorInfo(ctx)
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("get monitors: %w", err)
	}
	if monitors == nil {
		monitors = []layout.Monitor{}
	}
	out := ListMonitorsOutput{Monitors: monitors}
	if id, ok, err := s.gw.GetCurrentMonitor(ctx); err == nil && ok {
		out.Active = id
	}
	return nil, out, nil
}

func (s *Server) handleGetLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	w, h := args.Width, args.Height
	if w == 0 {
		w = gateway.ContainerWidth
	}
	if h == 0 {
		h = gateway.ContainerHeight
	}
	if w < 0 || h < 0 {
		return nil, GetLayoutOutput{}, fmt.Errorf("width and height must be positive")
	}
	rects, err := s.gw.GetMonitorLayout(ctx, w, h)
	if err != nil {
		return nil, GetLayoutOutput{}, fmt.Errorf("get layout: %w", err)
	}
	if rects == nil {
		rects = []layout.LayoutRect{}
	}
	return nil, GetLayoutOutput{Rects: rects}, nil
}

func (s *Server) handleGetConfig(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, config.Config, error) {
	cfg, err := s.gw.GetConfig(ctx)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("get config: %w", err)
	}
	return nil, cfg, nil
}

func (s *Server) handleSetOpacity(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetOpacityInput) (*mcpsdk.CallToolResult, config.Config, error) {
	return s.update(ctx, "opacity", func() error {
		return s.gw.UpdateOpacity(ctx, config.ClampOpacity(args.Opacity))
	})
}

func (s *Server) handleSetEnabled(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetEnabledInput) (*mcpsdk.CallToolResult, config.Config, error) {
	return s.update(ctx, "enabled", func() error {
		return s.gw.UpdateEnabled(ctx, args.Enabled)
	})
}

func (s *Server) handleSetAutoStart(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetAutoStartInput) (*mcpsdk.CallToolResult, config.Config, error) {
	return s.update(ctx, "auto_start", func() error {
		return s.gw.UpdateAutoStart(ctx, args.AutoStart)
	})
}

func (s *Server) handleSetAnimation(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetAnimationInput) (*mcpsdk.CallToolResult, config.Config, error) {
	if !config.ValidAnimationDuration(args.Duration) {
		return nil, config.Config{}, fmt.Errorf("duration must be one of 0, 200, 300, 500 (got %d)", args.Duration)
	}
	return s.update(ctx, "animation_duration", func() error {
		return s.gw.UpdateAnimationDuration(ctx, args.Duration)
	})
}

func (s *Server) handleSetLanguage(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetLanguageInput) (*mcpsdk.CallToolResult, config.Config, error) {
	if !i18n.Supported(args.Language) {
		return nil, config.Config{}, fmt.Errorf("unsupported language %q (want zh, en, ja, fr, de or es)", args.Language)
	}
	return s.update(ctx, "language", func() error {
		return s.gw.UpdateLanguage(ctx, args.Language)
	})
}

// update applies a mutation and returns the backend's config afterwards.
func (s *Server) update(ctx context.Context, field string, apply func() error) (*mcpsdk.CallToolResult, config.Config, error) {
	if err := apply(); err != nil {
		s.logger.Warn("mcp: update rejected", "field", field, "error", err)
		return nil, config.Config{}, fmt.Errorf("update %s: %w", field, err)
	}
	cfg, err := s.gw.GetConfig(ctx)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("get config: %w", err)
	}
	s.logger.Info("mcp: config updated", "field", field)
	return nil, cfg, nil
}

func (s *Server) handleRenderPreview(ctx context.Context, _ *mcpsdk.CallToolRequest, args RenderPreviewInput) (*mcpsdk.CallToolResult, any, error) {
	w, h := args.Width, args.Height
	if w == 0 {
		w = layout.ContainerWidth
	}
	if h == 0 {
		h = layout.ContainerHeight
	}

	lang := i18n.Parse(args.Lang)
	if args.Lang == "" {
		if cfg, err := s.gw.GetConfig(ctx); err == nil {
			lang = i18n.Parse(cfg.Language)
		}
	}

	rects, err := s.gw.GetMonitorLayout(ctx, gateway.ContainerWidth, gateway.ContainerHeight)
	if err != nil {
		return nil, nil, fmt.Errorf("get layout: %w", err)
	}
	active, _, err := s.gw.GetCurrentMonitor(ctx)
	if err != nil {
		active = ""
	}

	raster, err := render.NewRaster(w, h)
	if err != nil {
		return nil, nil, err
	}
	frame := render.NewRenderer(lang).Draw(raster, rects, active)

	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf); err != nil {
		return nil, nil, fmt.Errorf("encode preview: %w", err)
	}

	caption := fmt.Sprintf("%d monitor(s)", len(frame.Tiles))
	if frame.Empty() {
		caption = frame.Placeholder
	} else if active != "" {
		caption += ", active " + active
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.ImageContent{Data: buf.Bytes(), MIMEType: "image/png"},
			&mcpsdk.TextContent{Text: caption},
		},
	}, nil, nil
}
