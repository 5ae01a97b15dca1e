// Package sse streams dashboard progress to browsers with Server-Sent Events.
package sse

import (
	"time"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventDashboardStarted is sent when a dashboard run begins.
	EventDashboardStarted EventType = "dashboard.started"
	// EventDashboardPass is sent as each aggregation pass finishes.
	EventDashboardPass EventType = "dashboard.pass"
	// EventDashboardCompleted is sent once every pass has finished.
	EventDashboardCompleted EventType = "dashboard.completed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// ClientID restricts delivery to streams opened by that client.
	// Empty means broadcast to all.
	ClientID string `json:"-"`
}

// DashboardStartedEventData is the payload of dashboard.started.
type DashboardStartedEventData struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// DashboardPassEventData is the payload of dashboard.pass.
type DashboardPassEventData struct {
	RunID      string `json:"run_id"`
	Pass       string `json:"pass"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// DashboardCompletedEventData is the payload of dashboard.completed.
type DashboardCompletedEventData struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
	Partial     bool      `json:"partial"`
	Failures    []string  `json:"failures,omitempty"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewDashboardStartedEvent creates a dashboard.started event.
func NewDashboardStartedEvent(clientID, runID string) Event {
	now := time.Now()
	return Event{
		Type:      EventDashboardStarted,
		Timestamp: now,
		ClientID:  clientID,
		Data:      DashboardStartedEventData{RunID: runID, StartedAt: now},
	}
}

// NewDashboardPassEvent creates a dashboard.pass event.
func NewDashboardPassEvent(clientID string, data DashboardPassEventData) Event {
	return Event{
		Type:      EventDashboardPass,
		Timestamp: time.Now(),
		ClientID:  clientID,
		Data:      data,
	}
}

// NewDashboardCompletedEvent creates a dashboard.completed event.
func NewDashboardCompletedEvent(clientID string, data DashboardCompletedEventData) Event {
	return Event{
		Type:      EventDashboardCompleted,
		Timestamp: time.Now(),
		ClientID:  clientID,
		Data:      data,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
