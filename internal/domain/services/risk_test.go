package services

import (
	"testing"

	"permscope/internal/domain/models"
)

func TestIsGenuineRisk(t *testing.T) {
	e := NewRiskEvaluator()

	tests := []struct {
		name       string
		identifier string
		granted    bool
		level      models.ProtectionLevel
		want       bool
	}{
		{
			name:       "granted dangerous camera",
			identifier: "android.permission.CAMERA",
			granted:    true,
			level:      models.ProtectionDangerous,
			want:       true,
		},
		{
			name:       "denied dangerous camera",
			identifier: "android.permission.CAMERA",
			granted:    false,
			level:      models.ProtectionDangerous,
			want:       false,
		},
		{
			name:       "granted normal internet",
			identifier: "android.permission.INTERNET",
			granted:    true,
			level:      models.ProtectionNormal,
			want:       false,
		},
		{
			name:       "granted signature settings",
			identifier: "android.permission.WRITE_SETTINGS",
			granted:    true,
			level:      models.ProtectionSignature,
			want:       false,
		},
		{
			name:       "unknown protection never risk",
			identifier: "com.vendor.permission.CAMERA_EXTRA",
			granted:    true,
			level:      models.ProtectionUnknown,
			want:       false,
		},
		{
			// Dangerous on modern platforms but operational, not privacy-reaching.
			name:       "routine exact alarm allowlisted",
			identifier: "android.permission.SCHEDULE_EXACT_ALARM",
			granted:    true,
			level:      models.ProtectionDangerous,
			want:       false,
		},
		{
			name:       "routine notifications allowlisted",
			identifier: "android.permission.POST_NOTIFICATIONS",
			granted:    true,
			level:      models.ProtectionDangerous,
			want:       false,
		},
		{
			name:       "granted dangerous fine location",
			identifier: "android.permission.ACCESS_FINE_LOCATION",
			granted:    true,
			level:      models.ProtectionDangerous,
			want:       true,
		},
		{
			name:       "granted dangerous sms",
			identifier: "android.permission.READ_SMS",
			granted:    true,
			level:      models.ProtectionDangerous,
			want:       true,
		},
		{
			name:       "dangerous but not sensitive",
			identifier: "com.vendor.permission.CUSTOM_THING",
			granted:    true,
			level:      models.ProtectionDangerous,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.PermissionRecord{
				Identifier:      tt.identifier,
				Granted:         tt.granted,
				ProtectionLevel: tt.level,
			}
			if got := e.IsGenuineRisk(rec); got != tt.want {
				t.Errorf("IsGenuineRisk(%s granted=%v level=%s) = %v, want %v",
					tt.identifier, tt.granted, tt.level, got, tt.want)
			}
		})
	}
}

// The allowlist check runs before the sensitive set and overrides it.
func TestAllowlistOverridesSensitive(t *testing.T) {
	e := NewRiskEvaluator()

	// Matches "foreground_service" (allowlist) and "camera" (sensitive).
	rec := models.PermissionRecord{
		Identifier:      "android.permission.FOREGROUND_SERVICE_CAMERA",
		Granted:         true,
		ProtectionLevel: models.ProtectionDangerous,
	}
	if e.IsGenuineRisk(rec) {
		t.Error("allowlisted identifier evaluated as genuine risk")
	}
}

func TestKeywordAccessorsReturnCopies(t *testing.T) {
	e := NewRiskEvaluator()

	allow := e.RoutineAllowlist()
	allow[0] = "mutated"
	if e.RoutineAllowlist()[0] == "mutated" {
		t.Error("RoutineAllowlist exposed internal slice")
	}

	sens := e.SensitiveKeywords()
	sens[0] = "mutated"
	if e.SensitiveKeywords()[0] == "mutated" {
		t.Error("SensitiveKeywords exposed internal slice")
	}
}
