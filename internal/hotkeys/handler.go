package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrUnsupported is returned when the display backend exposes no X11 connection.
var ErrUnsupported = errors.New("global hotkeys require an X11 display")

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// eventLooper runs the X11 event loop that dispatches key presses.
type eventLooper interface {
	EventLoop()
	StopEventLoop()
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	loop   eventLooper
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. backend is any display backend;
// hotkeys only work when it exposes an X11 connection.
func NewHandler(backend any, logger *slog.Logger) *Handler {
	h := &Handler{logger: logger}
	if accessor, ok := backend.(x11Accessor); ok {
		h.xu = accessor.XUtil()
		h.root = accessor.RootWindow()
	}
	if loop, ok := backend.(eventLooper); ok {
		h.loop = loop
	}

	if h.xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(h.xu)
		})
	}
	return h
}

// Register binds keySequence (xgbutil syntax, e.g. "Mod4-Shift-e") to callback.
func (h *Handler) Register(keySequence string, callback func()) error {
	if h.xu == nil || h.loop == nil {
		return ErrUnsupported
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.logger.Debug("hotkey triggered", "hotkey", keySequence)
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to bind %q: %w", keySequence, err)
	}
	return nil
}

func (h *Handler) String() string { return "hotkeys" }

// Serve runs the X11 event loop until ctx is cancelled.
func (h *Handler) Serve(ctx context.Context) error {
	if h.loop == nil {
		return ErrUnsupported
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.loop.EventLoop()
	}()

	select {
	case <-ctx.Done():
		h.loop.StopEventLoop()
		<-done
		return ctx.Err()
	case <-done:
		return errors.New("x11 event loop exited")
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
