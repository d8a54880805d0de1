package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/daemon"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/i18n"
	"github.com/1broseidon/monofocus/internal/ipc"
	"github.com/1broseidon/monofocus/internal/palette"
	"github.com/1broseidon/monofocus/internal/render"
	"github.com/1broseidon/monofocus/internal/tui"
	"github.com/1broseidon/monofocus/internal/web"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "preview":
		os.Exit(runPreview(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "web":
		os.Exit(runWeb(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: monofocus <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the monofocus daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  toggle              Toggle the eye-care mask")
	fmt.Fprintln(w, "  preview             Render the monitor layout preview")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive control surface")
	fmt.Fprintln(w, "  web                 Serve the preview and settings over HTTP")
	fmt.Fprintln(w, "  menu                Quick settings via rofi, fuzzel, wofi or dmenu")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Create or edit the config interactively")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'monofocus <command> --help' for command-specific options.")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/monofocus/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monofocus daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the backend in the foreground: serves the IPC socket, tracks the")
		fmt.Fprintln(os.Stderr, "monitor under the pointer and registers the toggle hotkey.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := daemon.Run(ctx, daemon.Options{ConfigPath: *path}); err != nil {
		log.Printf("daemon: %v", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monofocus status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	active := status.ActiveMonitor
	if active == "" {
		active = "(none)"
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("enabled:        %v\n", status.Enabled)
	fmt.Printf("monitor_count:  %d\n", status.MonitorCount)
	fmt.Printf("active_monitor: %s\n", active)
	fmt.Printf("subscribers:    %d\n", status.Subscribers)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monofocus toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle the eye-care mask. Connected control surfaces apply the change;")
		fmt.Fprintln(os.Stderr, "with none connected the daemon flips it directly.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "toggle takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().ToggleShield(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	out := fs.String("out", "", "Write a PNG to this file (default: text preview on stdout)")
	width := fs.Int("width", 400, "PNG width in pixels")
	height := fs.Int("height", 160, "PNG height in pixels")
	langFlag := fs.String("lang", "", "Label language (default: configured language)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monofocus preview [--out FILE] [--width N] [--height N] [--lang CODE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Render the monitor layout with the focused monitor highlighted.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := ipc.NewClient()
	lang := i18n.Parse(*langFlag)
	if *langFlag == "" {
		if cfg, err := client.GetConfig(ctx); err == nil {
			lang = i18n.Parse(cfg.Language)
		}
	}
	rects, err := client.GetMonitorLayout(ctx, gateway.ContainerWidth, gateway.ContainerHeight)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	active, _, err := client.GetCurrentMonitor(ctx)
	if err != nil {
		active = ""
	}
	renderer := render.NewRenderer(lang)

	if *out == "" {
		cells := render.NewCells(80, 16, gateway.ContainerWidth, gateway.ContainerHeight)
		renderer.Draw(cells, rects, active)
		fmt.Println(cells.String())
		return 0
	}

	raster, err := render.NewRaster(*width, *height)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	renderer.Draw(raster, rects, active)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := raster.EncodePNG(f); err != nil {
		f.Close()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wrote %s\n", *out)
	return 0
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/monofocus/config.yaml)")
	debugLog := fs.String("log", "", "Write debug logs to this file")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: monofocus tui [--path PATH] [--log FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive control surface. Requires a running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  space, e   Toggle the eye-care mask")
		fmt.Fprintln(os.Stderr, "  +/-, ←/→   Adjust opacity")
		fmt.Fprintln(os.Stderr, "  n          Cycle animation speed")
		fmt.Fprintln(os.Stderr, "  a          Toggle auto start")
		fmt.Fprintln(os.Stderr, "  l          Choose language")
		fmt.Fprintln(os.Stderr, "  r          Refresh monitors")
		fmt.Fprintln(os.Stderr, "  q, Esc     Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	file, err := loadConfigFile(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// The terminal belongs to the TUI; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, cancel := signalContext()
	defer cancel()

	err = tui.Run(ctx, tui.Options{
		Gateway:         ipc.NewClient(),
		RefreshInterval: file.UI.RefreshInterval(),
		Logger:          logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWeb(args []string) int {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/monofocus/config.yaml)")
	addr := fs.String("addr", "", "Listen address (default: daemon.web_addr from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monofocus web [--addr HOST:PORT]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Routes:")
		fmt.Fprintln(os.Stderr, "  GET   /preview.png   Layout preview (?width=&height=&lang=)")
		fmt.Fprintln(os.Stderr, "  GET   /api/state     Config, monitors, layout and active monitor")
		fmt.Fprintln(os.Stderr, "  GET   /api/monitors  Attached monitors")
		fmt.Fprintln(os.Stderr, "  PATCH /api/config    Update config fields")
		fmt.Fprintln(os.Stderr, "  GET   /events        Server-sent backend events")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	file, err := loadConfigFile(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	listen := *addr
	if listen == "" {
		listen = file.Daemon.WebAddr
	}

	ctx, cancel := signalContext()
	defer cancel()

	server := web.New(listen, ipc.NewClient(), daemon.NewLogger(file.Daemon.LogLevel))
	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("web: %v", err)
		return 1
	}
	return 0
}

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	launcher := fs.String("launcher", "auto", "Launcher to use: auto, rofi, fuzzel, wofi, dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monofocus menu [--launcher NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a launcher menu to toggle the mask or change opacity, animation,")
		fmt.Fprintln(os.Stderr, "auto start and language. Bind it to a key in your window manager.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	backend, err := palette.NewBackend(*launcher)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := palette.Run(ctx, backend, ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfigFile(path string) (*config.File, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}
