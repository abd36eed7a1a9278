package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/1broseidon/focusdim/internal/overlay"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandPause       CommandType = "PAUSE"
	CommandResume      CommandType = "RESUME"
	CommandTogglePause CommandType = "TOGGLE_PAUSE"
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

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning     bool           `json:"daemon_running"`
	Paused            bool           `json:"paused"`
	DisplayCount      int            `json:"display_count"`
	ActiveDisplay     int            `json:"active_display"`
	Overlays          overlay.Counts `json:"overlays"`
	MessagesProcessed uint64         `json:"messages_processed"`
	Dragging          bool           `json:"dragging"`
	TopologyPending   bool           `json:"topology_pending"`
	DimmingEnabled    bool           `json:"dimming_enabled"`
	ActiveHighlight   bool           `json:"active_highlight"`
	PartialDimming    bool           `json:"partial_dimming"`
	TerminalPane      bool           `json:"terminal_pane"`
	UptimeSeconds     int64          `json:"uptime_seconds"`
	StartedAt         time.Time      `json:"started_at"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
	Focused bool   `json:"focused"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// PauseData is returned by PAUSE, RESUME and TOGGLE_PAUSE.
type PauseData struct {
	Paused bool `json:"paused"`
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
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
