package models

import "time"

// RequestedPermission is one (identifier, grant flag) tuple from the registry.
type RequestedPermission struct {
	Identifier string `json:"identifier"`
	Granted    bool   `json:"granted"`
}

// AppDescriptor is the raw per-app input read from the package registry.
type AppDescriptor struct {
	PackageName          string                `json:"package_name"`
	AppName              string                `json:"app_name"`
	VersionName          string                `json:"version_name,omitempty"`
	VersionCode          int64                 `json:"version_code,omitempty"`
	IsSystem             bool                  `json:"is_system"`
	IsUpdatedSystem      bool                  `json:"is_updated_system"`
	InstallerSource      string                `json:"installer_source,omitempty"`
	InstallTime          time.Time             `json:"install_time,omitempty"`
	RequestedPermissions []RequestedPermission `json:"requested_permissions"`
}

// AppPermissionRecord is the assembled, immutable output record for one app.
// Identity is defined by PackageName alone: two records with the same package
// name are the same entity regardless of other fields.
type AppPermissionRecord struct {
	AppName         string             `json:"app_name"`
	PackageName     string             `json:"package_name"`
	VersionName     string             `json:"version_name,omitempty"`
	VersionCode     int64              `json:"version_code,omitempty"`
	IsSystem        bool               `json:"is_system"`
	IsUpdatedSystem bool               `json:"is_updated_system"`
	InstallerSource string             `json:"installer_source"`
	InstallTime     time.Time          `json:"install_time,omitempty"`
	Permissions     []PermissionRecord `json:"permissions"`
}

// Equal reports whether two records refer to the same app entity.
func (r AppPermissionRecord) Equal(other AppPermissionRecord) bool {
	return r.PackageName == other.PackageName
}

// RiskRankingEntry is one row of the top-risk ranking.
type RiskRankingEntry struct {
	Record                AppPermissionRecord `json:"record"`
	Score                 int                 `json:"score"`
	DangerousGrantedCount int                 `json:"dangerous_granted_count"`
}

// ScanAggregate holds scan-wide totals and the top-N risk ranking.
type ScanAggregate struct {
	TotalApps        int                `json:"total_apps"`
	TotalPermissions int                `json:"total_permissions"`
	TotalGenuineRisk int                `json:"total_genuine_risk"`
	TopRiskApps      []RiskRankingEntry `json:"top_risk_apps"`
}
