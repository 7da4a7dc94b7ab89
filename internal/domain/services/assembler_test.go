package services

import (
	"context"
	"errors"
	"testing"

	"permscope/internal/domain/models"
	"permscope/internal/registry"
)

func newTestAssembler(reg registry.PackageRegistry) *Assembler {
	log := testLogger()
	return NewAssembler(reg, NewProtectionResolver(reg, nil, log), log)
}

func descriptor(pkg string, system, updated bool, perms ...models.RequestedPermission) models.AppDescriptor {
	return models.AppDescriptor{
		PackageName:          pkg,
		IsSystem:             system,
		IsUpdatedSystem:      updated,
		RequestedPermissions: perms,
	}
}

func TestAssembleEmptyPackageName(t *testing.T) {
	a := newTestAssembler(registry.NewStaticRegistry())

	_, err := a.Assemble(context.Background(), models.AppDescriptor{}, models.FilterConfig{})
	if !errors.Is(err, registry.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestAssembleExclusionRules(t *testing.T) {
	tests := []struct {
		name     string
		desc     models.AppDescriptor
		filter   models.FilterConfig
		excluded bool
	}{
		{
			name:     "system app excluded by default",
			desc:     descriptor("com.android.sys", true, false),
			filter:   models.FilterConfig{},
			excluded: true,
		},
		{
			name:     "system app kept when included",
			desc:     descriptor("com.android.sys", true, false),
			filter:   models.FilterConfig{IncludeSystemApps: true},
			excluded: false,
		},
		{
			name:     "user app always kept by rule 1",
			desc:     descriptor("com.example.user", false, false),
			filter:   models.FilterConfig{},
			excluded: false,
		},
		{
			name:     "useful-only drops untouched system app",
			desc:     descriptor("com.android.sys", true, false),
			filter:   models.FilterConfig{IncludeSystemApps: true, OnlyUsefulApps: true},
			excluded: true,
		},
		{
			name:     "useful-only keeps updated system app",
			desc:     descriptor("com.android.updated", true, true),
			filter:   models.FilterConfig{IncludeSystemApps: true, OnlyUsefulApps: true},
			excluded: false,
		},
		{
			name:     "useful-only keeps user app",
			desc:     descriptor("com.example.user", false, false),
			filter:   models.FilterConfig{IncludeSystemApps: true, OnlyUsefulApps: true},
			excluded: false,
		},
		{
			// Useful-only without include-system has no effect on its own.
			name:     "useful-only alone keeps user app",
			desc:     descriptor("com.example.user", false, false),
			filter:   models.FilterConfig{OnlyUsefulApps: true},
			excluded: false,
		},
		{
			name: "permission filter intersects",
			desc: descriptor("com.example.cam", false, false,
				models.RequestedPermission{Identifier: "android.permission.CAMERA", Granted: true}),
			filter:   models.FilterConfig{FilterByPermissions: []string{"android.permission.CAMERA"}},
			excluded: false,
		},
		{
			name: "permission filter misses",
			desc: descriptor("com.example.net", false, false,
				models.RequestedPermission{Identifier: "android.permission.INTERNET", Granted: true}),
			filter:   models.FilterConfig{FilterByPermissions: []string{"android.permission.CAMERA"}},
			excluded: true,
		},
		{
			name:     "empty permission filter keeps everything",
			desc:     descriptor("com.example.bare", false, false),
			filter:   models.FilterConfig{FilterByPermissions: nil},
			excluded: false,
		},
	}

	a := newTestAssembler(registry.NewStaticRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := a.Assemble(context.Background(), tt.desc, tt.filter)
			if err != nil {
				t.Fatalf("Assemble returned error: %v", err)
			}
			if tt.excluded && rec != nil {
				t.Errorf("descriptor not excluded, got record for %s", rec.PackageName)
			}
			if !tt.excluded && rec == nil {
				t.Error("descriptor excluded, want record")
			}
		})
	}
}

func TestAssembleBuildsPermissionRecords(t *testing.T) {
	reg := registry.NewStaticRegistry()
	a := newTestAssembler(reg)

	desc := descriptor("com.example.app", false, false,
		models.RequestedPermission{Identifier: "android.permission.CAMERA", Granted: true},
		models.RequestedPermission{Identifier: "android.permission.INTERNET", Granted: true},
		models.RequestedPermission{Identifier: "android.permission.READ_SMS", Granted: false},
	)

	rec, err := a.Assemble(context.Background(), desc, models.FilterConfig{})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("Assemble returned nil record")
	}
	if len(rec.Permissions) != 3 {
		t.Fatalf("record has %d permissions, want 3", len(rec.Permissions))
	}

	camera := rec.Permissions[0]
	if camera.Category != "Camera" || camera.ReadableName != "Camera" {
		t.Errorf("camera classified as (%s, %s)", camera.Category, camera.ReadableName)
	}
	if camera.ProtectionLevel != models.ProtectionDangerous {
		t.Errorf("camera protection = %s, want dangerous", camera.ProtectionLevel)
	}
	if !camera.IsGenuineRisk {
		t.Error("granted dangerous camera not flagged as genuine risk")
	}

	internet := rec.Permissions[1]
	if internet.IsGenuineRisk {
		t.Error("granted normal internet flagged as genuine risk")
	}

	sms := rec.Permissions[2]
	if sms.IsGenuineRisk {
		t.Error("denied dangerous sms flagged as genuine risk")
	}
}

func TestAssembleAppNameFallsBackToLabel(t *testing.T) {
	reg := registry.NewStaticRegistry()
	reg.SetLabel("com.example.app", "Example App")
	a := newTestAssembler(reg)

	desc := descriptor("com.example.app", false, false)
	desc.AppName = ""

	rec, err := a.Assemble(context.Background(), desc, models.FilterConfig{})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if rec.AppName != "Example App" {
		t.Errorf("AppName = %q, want registry label", rec.AppName)
	}
}

func TestAssembleAppNameFallsBackToPackage(t *testing.T) {
	a := newTestAssembler(registry.NewStaticRegistry())

	rec, err := a.Assemble(context.Background(), descriptor("com.example.unnamed", false, false), models.FilterConfig{})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if rec.AppName != "com.example.unnamed" {
		t.Errorf("AppName = %q, want package name fallback", rec.AppName)
	}
}

// Absent installers mean sideloaded or unknown; an empty string, not an error.
func TestAssembleAbsentInstaller(t *testing.T) {
	reg := registry.NewStaticRegistry()
	reg.AddApp(models.AppDescriptor{PackageName: "com.example.sideloaded"})
	a := newTestAssembler(reg)

	rec, err := a.Assemble(context.Background(), descriptor("com.example.sideloaded", false, false), models.FilterConfig{})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if rec.InstallerSource != "" {
		t.Errorf("InstallerSource = %q, want empty", rec.InstallerSource)
	}
}
