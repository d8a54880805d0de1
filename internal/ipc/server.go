package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/layout"
)

// Service is the backend state the server exposes over the socket.
type Service interface {
	Config() (config.Config, error)
	Monitors() ([]layout.Monitor, error)
	Layout(containerWidth, containerHeight float64) ([]layout.LayoutRect, error)
	CurrentMonitor() (layout.MonitorID, bool)

	UpdateOpacity(opacity float64) error
	UpdateEnabled(enabled bool) error
	UpdateAutoStart(autoStart bool) error
	UpdateAnimationDuration(duration int) error
	UpdateLanguage(language string) error

	ToggleShield()
	Status() StatusData
	// Subscribe returns a feed of push events and a function releasing it.
	// Observers watch events without taking over toggle-shield.
	Subscribe(observer bool) (<-chan gateway.Event, func())
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	svc        Service
	logger     *slog.Logger
	conns      sync.WaitGroup
}

// NewServer creates a server for socketPath. The socket is created by Serve.
func NewServer(socketPath string, svc Service, logger *slog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		svc:        svc,
		logger:     logger,
	}
}

// String names the server for supervisor logs.
func (s *Server) String() string { return "ipc-server" }

// Serve listens on the socket until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	defer func() {
		s.conns.Wait()
		os.Remove(s.socketPath)
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandSubscribe {
		var p SubscribePayload
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &p); err != nil {
				s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid subscribe payload: %v", err)))
				return
			}
		}
		s.stream(ctx, conn, reader, p.Observer)
		return
	}

	s.write(conn, s.handleCommand(req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetConfig:
		cfg, err := s.svc.Config()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to read config: %v", err))
		}
		return ok(cfg)

	case CommandGetMonitorInfo:
		monitors, err := s.svc.Monitors()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
		}
		if monitors == nil {
			monitors = []layout.Monitor{}
		}
		return ok(monitors)

	case CommandGetMonitorLayout:
		var p LayoutPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid layout payload: %v", err))
		}
		if p.ContainerWidth <= 0 || p.ContainerHeight <= 0 {
			return NewErrorResponse("container_width and container_height must be positive")
		}
		rects, err := s.svc.Layout(p.ContainerWidth, p.ContainerHeight)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to compute layout: %v", err))
		}
		if rects == nil {
			rects = []layout.LayoutRect{}
		}
		return ok(rects)

	case CommandGetCurrentMonitor:
		var data CurrentMonitorData
		if id, found := s.svc.CurrentMonitor(); found {
			data.ID = &id
		}
		return ok(data)

	case CommandUpdateOpacity:
		var p OpacityPayload
		return s.mutate(req.Payload, &p, "opacity", func() error { return s.svc.UpdateOpacity(p.Opacity) })

	case CommandUpdateEnabled:
		var p EnabledPayload
		return s.mutate(req.Payload, &p, "enabled", func() error { return s.svc.UpdateEnabled(p.Enabled) })

	case CommandUpdateAutoStart:
		var p AutoStartPayload
		return s.mutate(req.Payload, &p, "auto_start", func() error { return s.svc.UpdateAutoStart(p.AutoStart) })

	case CommandUpdateAnimationDuration:
		var p AnimationPayload
		return s.mutate(req.Payload, &p, "animation_duration", func() error { return s.svc.UpdateAnimationDuration(p.Duration) })

	case CommandUpdateLanguage:
		var p LanguagePayload
		return s.mutate(req.Payload, &p, "language", func() error { return s.svc.UpdateLanguage(p.Language) })

	case CommandToggleShield:
		s.svc.ToggleShield()
		return ok(nil)

	case CommandGetStatus:
		return ok(s.svc.Status())

	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) mutate(payload json.RawMessage, into any, field string, apply func() error) *Response {
	if err := json.Unmarshal(payload, into); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", field, err))
	}
	if err := apply(); err != nil {
		s.logger.Warn("IPC: update rejected", "field", field, "error", err)
		return NewErrorResponse(fmt.Sprintf("Failed to update %s: %v", field, err))
	}
	return ok(nil)
}

// stream acknowledges a subscription and forwards events until the client
// hangs up or the server stops.
func (s *Server) stream(ctx context.Context, conn net.Conn, reader *bufio.Reader, observer bool) {
	events, release := s.svc.Subscribe(observer)
	defer release()

	if !s.write(conn, ok(nil)) {
		return
	}

	// Any read result means the client went away.
	gone := make(chan struct{})
	go func() {
		io.Copy(io.Discard, reader)
		close(gone)
	}()

	enc := json.NewEncoder(conn)
	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := enc.Encode(NewEventFrame(ev)); err != nil {
				s.logger.Debug("IPC: subscriber write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) write(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("Failed to send response", "error", err)
		return false
	}
	return true
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
