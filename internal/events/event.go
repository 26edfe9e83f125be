package events

import (
	"time"
)

// EventType classifies entries in the lifecycle log.
type EventType string

const (
	// Application lifecycle
	EventAppStart EventType = "app_start"
	EventAppQuit  EventType = "app_quit"

	// Watcher lifecycle
	EventWatchStart    EventType = "watch_start"
	EventWatchDegraded EventType = "watch_degraded"
	EventWatchRestored EventType = "watch_restored"

	// Worker lifecycle
	EventWorkerSpawn    EventType = "worker_spawn"
	EventWorkerDone     EventType = "worker_done"
	EventWorkerFailed   EventType = "worker_failed"
	EventWorkerKilled   EventType = "worker_killed"
	EventArtifactDelete EventType = "artifact_delete"

	// Error events
	EventError EventType = "error"
)

// Event is a single logged lifecycle entry.
type Event struct {
	// Timestamp when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// Type of the event
	Type EventType `json:"type"`

	// Project working directory (if applicable)
	Project string `json:"project,omitempty"`

	// Additional data specific to the event type
	Data map[string]interface{} `json:"data,omitempty"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, project string, data map[string]interface{}) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Project:   project,
		Data:      data,
	}
}

// WorkerData contains data for worker lifecycle events.
type WorkerData struct {
	WorkerID string  `json:"worker_id"`
	Ticket   string  `json:"ticket,omitempty"`
	Source   string  `json:"source,omitempty"`
	CostUSD  float64 `json:"cost_usd,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// ArtifactData contains data for artifact delete events.
type ArtifactData struct {
	Artifact string `json:"artifact"`
	Name     string `json:"name,omitempty"`
}

// ErrorData contains data for error events.
type ErrorData struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// ToMap converts a struct to a map[string]interface{} for event data.
func ToMap(v interface{}) map[string]interface{} {
	switch d := v.(type) {
	case WorkerData:
		m := map[string]interface{}{
			"worker_id": d.WorkerID,
		}
		if d.Ticket != "" {
			m["ticket"] = d.Ticket
		}
		if d.Source != "" {
			m["source"] = d.Source
		}
		if d.CostUSD != 0 {
			m["cost_usd"] = d.CostUSD
		}
		if d.Reason != "" {
			m["reason"] = d.Reason
		}
		return m
	case ArtifactData:
		m := map[string]interface{}{
			"artifact": d.Artifact,
		}
		if d.Name != "" {
			m["name"] = d.Name
		}
		return m
	case ErrorData:
		return map[string]interface{}{
			"error_type": d.ErrorType,
			"message":    d.Message,
		}
	case map[string]interface{}:
		return d
	default:
		return nil
	}
}
