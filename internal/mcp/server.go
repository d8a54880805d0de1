// Package mcp exposes monitor queries and overlay settings as MCP tools.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/monofocus/internal/gateway"
)

const (
	ServerName    = "monofocus"
	ServerVersion = "0.1.0"
)

// Server is the MCP server. Every tool is a round trip through the gateway.
type Server struct {
	mcpServer *mcpsdk.Server
	gw        gateway.Gateway
	logger    *slog.Logger
}

// NewServer creates a server backed by gw.
func NewServer(gw gateway.Gateway, logger *slog.Logger) *Server {
	s := &Server{gw: gw, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Summarize the eye-care overlay: current settings, number of detected monitors, and which monitor holds mouse focus.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List attached monitors with their id, name, position and resolution, plus the id of the focused monitor.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Return monitor rectangles normalized into a container (default 400x160) with a 20-unit margin, as used by the layout preview.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_config",
		Description: "Return the overlay configuration: opacity, enabled, auto_start, animation_duration and language.",
	}, s.handleGetConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_opacity",
		Description: "Set the mask opacity (0 to 1). Returns the resulting configuration.",
	}, s.handleSetOpacity)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_enabled",
		Description: "Turn the eye-care mask on or off. Returns the resulting configuration.",
	}, s.handleSetEnabled)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_auto_start",
		Description: "Register or remove the session auto-start entry. Returns the resulting configuration.",
	}, s.handleSetAutoStart)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_animation_duration",
		Description: "Set the mask transition duration in milliseconds (0, 200, 300 or 500). Returns the resulting configuration.",
	}, s.handleSetAnimation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_language",
		Description: "Set the control surface language (zh, en, ja, fr, de, es). Returns the resulting configuration.",
	}, s.handleSetLanguage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "render_preview",
		Description: "Render the monitor layout preview as a PNG image, highlighting the focused monitor.",
	}, s.handleRenderPreview)
}
