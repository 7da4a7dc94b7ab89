package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

// Idle status serializes the zero scan ID explicitly; struct-typed fields
// are never dropped by omitempty, so the tags must not pretend otherwise.
func TestScanStatusJSONShape(t *testing.T) {
	data, err := json.Marshal(ScanStatus{State: ScanStateIdle})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["state"] != "idle" {
		t.Errorf("state = %v, want idle", decoded["state"])
	}
	if got, ok := decoded["scan_id"]; !ok || got != uuid.Nil.String() {
		t.Errorf("scan_id = %v, want the zero UUID", got)
	}
	if _, ok := decoded["error"]; ok {
		t.Error("empty error string was serialized")
	}
}
