package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/monofocus/internal/config"
	"github.com/1broseidon/monofocus/internal/gateway"
	"github.com/1broseidon/monofocus/internal/layout"
	"github.com/1broseidon/monofocus/internal/runtimepath"
)

// Client handles IPC communication with the daemon. It implements
// gateway.Gateway.
type Client struct {
	socketPath string
	timeout    time.Duration
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient creates a new IPC client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, command CommandType, payload any) error {
	req := Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = raw
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// sendRequest sends a request and decodes the response data into out.
func (c *Client) sendRequest(ctx context.Context, command CommandType, payload, out any) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	if err := writeRequest(conn, command, payload); err != nil {
		return err
	}
	resp, err := readResponse(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetConfig fetches the daemon's authoritative config.
func (c *Client) GetConfig(ctx context.Context) (config.Config, error) {
	var cfg config.Config
	err := c.sendRequest(ctx, CommandGetConfig, nil, &cfg)
	return cfg, err
}

// GetMonitorInfo lists attached monitors.
func (c *Client) GetMonitorInfo(ctx context.Context) ([]layout.Monitor, error) {
	var monitors []layout.Monitor
	err := c.sendRequest(ctx, CommandGetMonitorInfo, nil, &monitors)
	return monitors, err
}

// GetMonitorLayout returns monitor rects normalized for the given container.
func (c *Client) GetMonitorLayout(ctx context.Context, containerWidth, containerHeight float64) ([]layout.LayoutRect, error) {
	var rects []layout.LayoutRect
	err := c.sendRequest(ctx, CommandGetMonitorLayout, LayoutPayload{
		ContainerWidth:  containerWidth,
		ContainerHeight: containerHeight,
	}, &rects)
	return rects, err
}

// GetCurrentMonitor returns the monitor under the pointer.
func (c *Client) GetCurrentMonitor(ctx context.Context) (layout.MonitorID, bool, error) {
	var data CurrentMonitorData
	if err := c.sendRequest(ctx, CommandGetCurrentMonitor, nil, &data); err != nil {
		return "", false, err
	}
	if data.ID == nil {
		return "", false, nil
	}
	return *data.ID, true, nil
}

func (c *Client) UpdateOpacity(ctx context.Context, opacity float64) error {
	return c.sendRequest(ctx, CommandUpdateOpacity, OpacityPayload{Opacity: config.ClampOpacity(opacity)}, nil)
}

func (c *Client) UpdateEnabled(ctx context.Context, enabled bool) error {
	return c.sendRequest(ctx, CommandUpdateEnabled, EnabledPayload{Enabled: enabled}, nil)
}

func (c *Client) UpdateAutoStart(ctx context.Context, autoStart bool) error {
	return c.sendRequest(ctx, CommandUpdateAutoStart, AutoStartPayload{AutoStart: autoStart}, nil)
}

func (c *Client) UpdateAnimationDuration(ctx context.Context, duration int) error {
	return c.sendRequest(ctx, CommandUpdateAnimationDuration, AnimationPayload{Duration: duration}, nil)
}

func (c *Client) UpdateLanguage(ctx context.Context, language string) error {
	return c.sendRequest(ctx, CommandUpdateLanguage, LanguagePayload{Language: language}, nil)
}

// ToggleShield asks the daemon to publish a toggle-shield event.
func (c *Client) ToggleShield(ctx context.Context) error {
	return c.sendRequest(ctx, CommandToggleShield, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus(ctx context.Context) (*StatusData, error) {
	var status StatusData
	if err := c.sendRequest(ctx, CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the daemon is reachable
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetStatus(ctx)
	return err
}

// Subscribe opens a long-lived connection and streams push events. The
// channel closes when ctx is cancelled or the daemon goes away. The caller
// is expected to act on toggle-shield.
func (c *Client) Subscribe(ctx context.Context) (<-chan gateway.Event, error) {
	return c.subscribe(ctx, nil)
}

// Observe is Subscribe for surfaces that only display events; toggle-shield
// stays with the daemon while only observers are connected.
func (c *Client) Observe(ctx context.Context) (<-chan gateway.Event, error) {
	return c.subscribe(ctx, SubscribePayload{Observer: true})
}

func (c *Client) subscribe(ctx context.Context, payload any) (<-chan gateway.Event, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, CommandSubscribe, payload); err != nil {
		conn.Close()
		return nil, err
	}
	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	events := make(chan gateway.Event, 16)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer close(stop)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var frame EventFrame
			if err := json.Unmarshal(line, &frame); err != nil {
				continue
			}
			select {
			case events <- frame.GatewayEvent():
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
