package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"permscope/internal/domain/models"
)

// StaticRegistry is an in-memory package registry seeded from a fixture or
// built programmatically. It backs development mode and tests, and mirrors
// the degrade-gracefully path taken when no device is attached.
type StaticRegistry struct {
	mu           sync.RWMutex
	order        []string
	apps         map[string]models.AppDescriptor
	labels       map[string]string
	protections  map[string]models.ProtectionLevel
	descriptions map[string]string
}

// NewStaticRegistry creates an empty static registry preloaded with the
// platform protection levels for well-known permissions.
func NewStaticRegistry() *StaticRegistry {
	r := &StaticRegistry{
		apps:         make(map[string]models.AppDescriptor),
		labels:       make(map[string]string),
		protections:  make(map[string]models.ProtectionLevel),
		descriptions: make(map[string]string),
	}
	for id, level := range platformProtectionLevels {
		r.protections[id] = level
	}
	return r
}

// fixture is the on-disk shape of a static registry seed.
type fixture struct {
	Apps        []models.AppDescriptor `json:"apps"`
	Labels      map[string]string      `json:"labels,omitempty"`
	Permissions []fixturePermission    `json:"permissions,omitempty"`
}

type fixturePermission struct {
	Identifier      string `json:"identifier"`
	ProtectionLevel string `json:"protection_level"`
	Description     string `json:"description,omitempty"`
}

// LoadFixture seeds the registry from a JSON fixture file.
func (r *StaticRegistry) LoadFixture(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	var fix fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return fmt.Errorf("failed to parse fixture: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, app := range fix.Apps {
		if app.PackageName == "" {
			return fmt.Errorf("fixture app without package name")
		}
		if _, exists := r.apps[app.PackageName]; !exists {
			r.order = append(r.order, app.PackageName)
		}
		r.apps[app.PackageName] = app
	}
	for pkg, label := range fix.Labels {
		r.labels[pkg] = label
	}
	for _, perm := range fix.Permissions {
		if perm.Identifier == "" {
			return fmt.Errorf("fixture permission without identifier")
		}
		r.protections[perm.Identifier] = models.ParseProtectionLevel(perm.ProtectionLevel)
		if perm.Description != "" {
			r.descriptions[perm.Identifier] = perm.Description
		}
	}
	return nil
}

// AddApp registers a descriptor, preserving insertion order for enumeration.
func (r *StaticRegistry) AddApp(app models.AppDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apps[app.PackageName]; !exists {
		r.order = append(r.order, app.PackageName)
	}
	r.apps[app.PackageName] = app
}

// SetProtectionLevel overrides the protection level for an identifier.
func (r *StaticRegistry) SetProtectionLevel(identifier string, level models.ProtectionLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.protections[identifier] = level
}

// SetLabel sets the display label for a package.
func (r *StaticRegistry) SetLabel(packageName, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[packageName] = label
}

// ListInstalledPackages returns descriptors in insertion order.
func (r *StaticRegistry) ListInstalledPackages(ctx context.Context) ([]models.AppDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AppDescriptor, 0, len(r.order))
	for _, pkg := range r.order {
		out = append(out, r.apps[pkg])
	}
	return out, nil
}

// PackageInfo returns a single descriptor or ErrPackageNotFound.
func (r *StaticRegistry) PackageInfo(ctx context.Context, packageName string) (*models.AppDescriptor, error) {
	if strings.TrimSpace(packageName) == "" {
		return nil, ErrInvalidArgument
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[packageName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packageName)
	}
	return &app, nil
}

// InstallerPackageName returns the installer source; empty when absent.
func (r *StaticRegistry) InstallerPackageName(ctx context.Context, packageName string) (string, error) {
	desc, err := r.PackageInfo(ctx, packageName)
	if err != nil {
		return "", err
	}
	return desc.InstallerSource, nil
}

// PermissionProtectionLevel resolves from the seeded table.
func (r *StaticRegistry) PermissionProtectionLevel(ctx context.Context, identifier string) (models.ProtectionLevel, error) {
	if strings.TrimSpace(identifier) == "" {
		return models.ProtectionUnknown, ErrInvalidArgument
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	level, ok := r.protections[identifier]
	if !ok {
		return models.ProtectionUnknown, fmt.Errorf("permission %s not registered", identifier)
	}
	return level, nil
}

// PermissionDescription resolves from the seeded table; empty when absent.
func (r *StaticRegistry) PermissionDescription(ctx context.Context, identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", ErrInvalidArgument
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptions[identifier], nil
}

// ApplicationLabel resolves the display name, falling back to the package name.
func (r *StaticRegistry) ApplicationLabel(ctx context.Context, packageName string) (string, error) {
	if strings.TrimSpace(packageName) == "" {
		return "", ErrInvalidArgument
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if label, ok := r.labels[packageName]; ok && label != "" {
		return label, nil
	}
	return packageName, nil
}

// platformProtectionLevels seeds the protection levels the Android platform
// assigns to its well-known permissions.
var platformProtectionLevels = map[string]models.ProtectionLevel{
	"android.permission.INTERNET":               models.ProtectionNormal,
	"android.permission.ACCESS_NETWORK_STATE":   models.ProtectionNormal,
	"android.permission.CHANGE_NETWORK_STATE":   models.ProtectionNormal,
	"android.permission.VIBRATE":                models.ProtectionNormal,
	"android.permission.WAKE_LOCK":              models.ProtectionNormal,
	"android.permission.RECEIVE_BOOT_COMPLETED": models.ProtectionNormal,
	"android.permission.FOREGROUND_SERVICE":     models.ProtectionNormal,
	"android.permission.BLUETOOTH":              models.ProtectionNormal,
	"android.permission.BLUETOOTH_ADMIN":        models.ProtectionNormal,
	"android.permission.NFC":                    models.ProtectionNormal,
	"android.permission.SET_ALARM":              models.ProtectionNormal,

	"android.permission.CAMERA":                     models.ProtectionDangerous,
	"android.permission.RECORD_AUDIO":               models.ProtectionDangerous,
	"android.permission.ACCESS_FINE_LOCATION":       models.ProtectionDangerous,
	"android.permission.ACCESS_COARSE_LOCATION":     models.ProtectionDangerous,
	"android.permission.ACCESS_BACKGROUND_LOCATION": models.ProtectionDangerous,
	"android.permission.READ_CONTACTS":              models.ProtectionDangerous,
	"android.permission.WRITE_CONTACTS":             models.ProtectionDangerous,
	"android.permission.READ_SMS":                   models.ProtectionDangerous,
	"android.permission.SEND_SMS":                   models.ProtectionDangerous,
	"android.permission.RECEIVE_SMS":                models.ProtectionDangerous,
	"android.permission.READ_CALL_LOG":              models.ProtectionDangerous,
	"android.permission.WRITE_CALL_LOG":             models.ProtectionDangerous,
	"android.permission.PROCESS_OUTGOING_CALLS":     models.ProtectionDangerous,
	"android.permission.READ_PHONE_STATE":           models.ProtectionDangerous,
	"android.permission.CALL_PHONE":                 models.ProtectionDangerous,
	"android.permission.READ_CALENDAR":              models.ProtectionDangerous,
	"android.permission.WRITE_CALENDAR":             models.ProtectionDangerous,
	"android.permission.BODY_SENSORS":               models.ProtectionDangerous,
	"android.permission.ACTIVITY_RECOGNITION":       models.ProtectionDangerous,
	"android.permission.READ_EXTERNAL_STORAGE":      models.ProtectionDangerous,
	"android.permission.WRITE_EXTERNAL_STORAGE":     models.ProtectionDangerous,
	"android.permission.ACCESS_MEDIA_LOCATION":      models.ProtectionDangerous,
	"android.permission.POST_NOTIFICATIONS":         models.ProtectionDangerous,
	"android.permission.SCHEDULE_EXACT_ALARM":       models.ProtectionDangerous,

	"android.permission.WRITE_SETTINGS":          models.ProtectionSignature,
	"android.permission.INSTALL_PACKAGES":        models.ProtectionSignatureOrSystem,
	"android.permission.MANAGE_EXTERNAL_STORAGE": models.ProtectionSignatureOrSystem,
}
