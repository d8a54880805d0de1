// Package tui is the terminal control surface. It hosts the sync
// controller in a bubbletea program and draws the monitor preview on a
// terminal cell grid.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/monofocus/internal/controller"
	"github.com/1broseidon/monofocus/internal/gateway"
)

// Options configures Run.
type Options struct {
	Gateway         gateway.Gateway
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ctl := controller.New(controller.Options{
		Gateway:         opts.Gateway,
		RefreshInterval: opts.RefreshInterval,
		Logger:          opts.Logger,
		Context:         ctx,
	})

	p := tea.NewProgram(newModel(ctl), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
