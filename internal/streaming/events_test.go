package streaming

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"permscope/internal/domain/models"
)

func TestCompletedEventDurationInMilliseconds(t *testing.T) {
	result := &models.ScanResult{
		ScanID:   uuid.New(),
		Epoch:    2,
		Duration: 1500 * time.Millisecond,
		Aggregate: models.ScanAggregate{
			TotalApps:        3,
			TotalPermissions: 12,
			TotalGenuineRisk: 2,
		},
	}

	event := NewCompletedEvent(result)
	if event.DurationMS != 1500 {
		t.Fatalf("DurationMS = %d, want 1500", event.DurationMS)
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got := decoded["duration_ms"]; got != float64(1500) {
		t.Errorf("duration_ms = %v, want 1500", got)
	}
}

func TestSubscriptionMatches(t *testing.T) {
	event := &ScanEvent{Type: EventTypeScanCompleted}

	tests := []struct {
		name  string
		types []EventType
		want  bool
	}{
		{"empty subscription matches all", nil, true},
		{"matching type", []EventType{EventTypeScanCompleted}, true},
		{"non-matching type", []EventType{EventTypeScanFailed}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{Types: tt.types}
			if got := sub.Matches(event); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
