package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/monofocus/internal/gateway"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetConfig               CommandType = "get_config"
	CommandGetMonitorInfo          CommandType = "get_monitor_info"
	CommandGetMonitorLayout        CommandType = "get_monitor_layout"
	CommandGetCurrentMonitor       CommandType = "get_current_monitor"
	CommandUpdateOpacity           CommandType = "update_opacity"
	CommandUpdateEnabled           CommandType = "update_enabled"
	CommandUpdateAutoStart         CommandType = "update_auto_start"
	CommandUpdateAnimationDuration CommandType = "update_animation_duration"
	CommandUpdateLanguage          CommandType = "update_language"
	CommandToggleShield            CommandType = "toggle_shield"
	CommandGetStatus               CommandType = "get_status"
	// CommandSubscribe keeps the connection open and streams EventFrames.
	CommandSubscribe CommandType = "subscribe"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by get_status
type StatusData struct {
	DaemonRunning bool   `json:"daemon_running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	MonitorCount  int    `json:"monitor_count"`
	ActiveMonitor string `json:"active_monitor,omitempty"`
	Subscribers   int    `json:"subscribers"`
	Enabled       bool   `json:"enabled"`
}

// SubscribePayload is optional; an observer receives events but leaves
// toggle-shield to the daemon.
type SubscribePayload struct {
	Observer bool `json:"observer,omitempty"`
}

type LayoutPayload struct {
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
}

// CurrentMonitorData carries a null id when no monitor holds focus.
type CurrentMonitorData struct {
	ID *string `json:"id"`
}

type OpacityPayload struct {
	Opacity float64 `json:"opacity"`
}

type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}

type AutoStartPayload struct {
	AutoStart bool `json:"auto_start"`
}

type AnimationPayload struct {
	Duration int `json:"duration"`
}

type LanguagePayload struct {
	Language string `json:"language"`
}

// EventFrame is one line of a subscribe stream.
type EventFrame struct {
	Event   gateway.EventKind `json:"event"`
	Payload *string           `json:"payload,omitempty"`
}

// NewEventFrame converts a gateway event to its wire form.
func NewEventFrame(ev gateway.Event) EventFrame {
	f := EventFrame{Event: ev.Kind}
	if ev.Kind == gateway.EventMonitorChanged && ev.MonitorID != "" {
		id := ev.MonitorID
		f.Payload = &id
	}
	return f
}

// GatewayEvent converts a wire frame back to a gateway event.
func (f EventFrame) GatewayEvent() gateway.Event {
	ev := gateway.Event{Kind: f.Event}
	if f.Payload != nil {
		ev.MonitorID = *f.Payload
	}
	return ev
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
