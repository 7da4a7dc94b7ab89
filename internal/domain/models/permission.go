package models

import "strings"

// ProtectionLevel is the OS-assigned sensitivity classification of a permission
type ProtectionLevel string

const (
	ProtectionNormal            ProtectionLevel = "normal"
	ProtectionDangerous         ProtectionLevel = "dangerous"
	ProtectionSignature         ProtectionLevel = "signature"
	ProtectionSignatureOrSystem ProtectionLevel = "signatureOrSystem"
	ProtectionUnknown           ProtectionLevel = "unknown"
)

// ParseProtectionLevel maps a raw registry classification to a ProtectionLevel.
// Unrecognized values resolve to ProtectionUnknown.
func ParseProtectionLevel(raw string) ProtectionLevel {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "normal":
		return ProtectionNormal
	case "dangerous", "runtime":
		return ProtectionDangerous
	case "signature":
		return ProtectionSignature
	case "signatureorsystem", "signature|privileged", "signature|system":
		return ProtectionSignatureOrSystem
	default:
		return ProtectionUnknown
	}
}

// PermissionRecord is one classified, risk-scored permission instance of an app.
// Immutable once constructed; IsGenuineRisk is always derived, never supplied.
type PermissionRecord struct {
	Identifier      string          `json:"identifier"`
	Granted         bool            `json:"granted"`
	ProtectionLevel ProtectionLevel `json:"protection_level"`
	Category        string          `json:"category"`
	ReadableName    string          `json:"readable_name"`
	Description     string          `json:"description,omitempty"`
	IsGenuineRisk   bool            `json:"is_genuine_risk"`
}

// FilterConfig controls which apps are included in an assembled scan.
type FilterConfig struct {
	IncludeSystemApps   bool     `json:"include_system_apps"`
	OnlyUsefulApps      bool     `json:"only_useful_apps"`
	FilterByPermissions []string `json:"filter_by_permissions,omitempty"`
}
