package services

import (
	"strings"

	"permscope/internal/domain/models"
)

// routineOperationalKeywords allowlists dangerous-but-routine permissions:
// operational plumbing an ordinary app needs, not a privacy exposure. This
// check runs before the sensitive set and overrides it.
var routineOperationalKeywords = []string{
	"internet",
	"vibrate",
	"wake_lock",
	"access_network_state",
	"change_network_state",
	"post_notifications",
	"foreground_service",
	"receive_boot_completed",
	"schedule_exact_alarm",
}

// sensitiveKeywords marks granted dangerous permissions that reach private
// user data or hardware sensors.
var sensitiveKeywords = []string{
	"camera",
	"record_audio", "microphone",
	"location", "access_fine_location", "access_coarse_location", "precise_location", "background_location",
	"contacts", "read_contacts", "write_contacts",
	"sms", "read_sms", "send_sms", "receive_sms",
	"call_log", "process_outgoing_calls", "phone", "read_phone_state",
	"calendar",
	"body_sensors", "activity_recognition", "health",
	"storage", "read_external_storage", "write_external_storage", "manage_external_storage", "media_location",
}

// RiskEvaluator decides whether a permission instance is a genuine risk.
// Pure function of a single record; safe for concurrent use.
type RiskEvaluator struct {
	allowlist []string
	sensitive []string
}

// NewRiskEvaluator creates an evaluator over the fixed keyword tables.
func NewRiskEvaluator() *RiskEvaluator {
	return &RiskEvaluator{
		allowlist: routineOperationalKeywords,
		sensitive: sensitiveKeywords,
	}
}

// IsGenuineRisk narrows "dangerous" down to granted, privacy-sensitive
// permissions. An identifier matching both the routine allowlist and the
// sensitive set is not a risk: the allowlist wins.
func (e *RiskEvaluator) IsGenuineRisk(rec models.PermissionRecord) bool {
	if !rec.Granted {
		return false
	}
	if rec.ProtectionLevel != models.ProtectionDangerous {
		return false
	}

	lowered := strings.ToLower(rec.Identifier)
	if matchesAny(lowered, e.allowlist) {
		return false
	}
	return matchesAny(lowered, e.sensitive)
}

// RoutineAllowlist returns a copy of the allowlist keywords for inspection.
func (e *RiskEvaluator) RoutineAllowlist() []string {
	out := make([]string, len(e.allowlist))
	copy(out, e.allowlist)
	return out
}

// SensitiveKeywords returns a copy of the sensitive keywords for inspection.
func (e *RiskEvaluator) SensitiveKeywords() []string {
	out := make([]string, len(e.sensitive))
	copy(out, e.sensitive)
	return out
}

func matchesAny(lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
