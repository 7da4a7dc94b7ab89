// Package streaming pushes scan lifecycle events to WebSocket clients.
package streaming

import (
	"time"

	"github.com/google/uuid"

	"permscope/internal/domain/models"
)

// EventType represents the type of scan event
type EventType string

const (
	EventTypeScanStarted   EventType = "scan_started"
	EventTypeScanCompleted EventType = "scan_completed"
	EventTypeScanFailed    EventType = "scan_failed"
)

// ScanEvent is a real-time scan lifecycle update pushed to clients.
type ScanEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ScanID string           `json:"scan_id,omitempty"`
	Epoch  uint64           `json:"epoch,omitempty"`
	State  models.ScanState `json:"state,omitempty"`
	Error  string           `json:"error,omitempty"`

	// Summary of a completed scan
	TotalApps        int   `json:"total_apps,omitempty"`
	TotalPermissions int   `json:"total_permissions,omitempty"`
	TotalGenuineRisk int   `json:"total_genuine_risk,omitempty"`
	DurationMS       int64 `json:"duration_ms,omitempty"`
}

// NewStatusEvent creates an event from a scan status transition.
func NewStatusEvent(eventType EventType, status models.ScanStatus) *ScanEvent {
	return &ScanEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		ScanID:    status.ScanID.String(),
		Epoch:     status.Epoch,
		State:     status.State,
		Error:     status.Error,
	}
}

// NewCompletedEvent creates an event summarizing a published scan result.
func NewCompletedEvent(result *models.ScanResult) *ScanEvent {
	return &ScanEvent{
		ID:               uuid.New().String(),
		Type:             EventTypeScanCompleted,
		Timestamp:        time.Now(),
		ScanID:           result.ScanID.String(),
		Epoch:            result.Epoch,
		State:            models.ScanStateReady,
		TotalApps:        result.Aggregate.TotalApps,
		TotalPermissions: result.Aggregate.TotalPermissions,
		TotalGenuineRisk: result.Aggregate.TotalGenuineRisk,
		DurationMS:       result.Duration.Milliseconds(),
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *ScanEvent) bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, t := range s.Types {
		if t == event.Type {
			return true
		}
	}
	return false
}
