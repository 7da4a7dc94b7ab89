package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanState is the caller-visible lifecycle of a scan.
type ScanState string

const (
	ScanStateIdle     ScanState = "idle"
	ScanStateScanning ScanState = "scanning"
	ScanStateReady    ScanState = "ready"
	ScanStateError    ScanState = "error"
)

// ScanStatus describes the scan service's current lifecycle position.
// ScanID and the timestamps are zero values until the first scan starts;
// omitempty never omits struct-typed fields, so they are serialized always.
type ScanStatus struct {
	State       ScanState `json:"state"`
	Epoch       uint64    `json:"epoch"`
	ScanID      uuid.UUID `json:"scan_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Error       string    `json:"error,omitempty"`
}

// ScanResult is the published outcome of one completed scan.
type ScanResult struct {
	ScanID      uuid.UUID             `json:"scan_id"`
	Epoch       uint64                `json:"epoch"`
	Filter      FilterConfig          `json:"filter"`
	Records     []AppPermissionRecord `json:"records"`
	Aggregate   ScanAggregate         `json:"aggregate"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt time.Time             `json:"completed_at"`
	Duration    time.Duration         `json:"duration"`
}
