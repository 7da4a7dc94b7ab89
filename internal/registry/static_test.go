package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"permscope/internal/domain/models"
)

func TestStaticRegistryEnumerationOrder(t *testing.T) {
	reg := NewStaticRegistry()
	reg.AddApp(models.AppDescriptor{PackageName: "com.b"})
	reg.AddApp(models.AppDescriptor{PackageName: "com.a"})
	reg.AddApp(models.AppDescriptor{PackageName: "com.c"})

	apps, err := reg.ListInstalledPackages(context.Background())
	if err != nil {
		t.Fatalf("ListInstalledPackages returned error: %v", err)
	}
	want := []string{"com.b", "com.a", "com.c"}
	if len(apps) != len(want) {
		t.Fatalf("listed %d apps, want %d", len(apps), len(want))
	}
	for i, pkg := range want {
		if apps[i].PackageName != pkg {
			t.Errorf("apps[%d] = %s, want %s", i, apps[i].PackageName, pkg)
		}
	}
}

func TestStaticRegistryPackageInfo(t *testing.T) {
	reg := NewStaticRegistry()
	reg.AddApp(models.AppDescriptor{PackageName: "com.example.app", AppName: "Example"})

	desc, err := reg.PackageInfo(context.Background(), "com.example.app")
	if err != nil {
		t.Fatalf("PackageInfo returned error: %v", err)
	}
	if desc.AppName != "Example" {
		t.Errorf("AppName = %q", desc.AppName)
	}

	if _, err := reg.PackageInfo(context.Background(), "com.missing"); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("err = %v, want ErrPackageNotFound", err)
	}
	if _, err := reg.PackageInfo(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestStaticRegistryPlatformProtectionLevels(t *testing.T) {
	reg := NewStaticRegistry()
	ctx := context.Background()

	tests := []struct {
		identifier string
		want       models.ProtectionLevel
	}{
		{"android.permission.INTERNET", models.ProtectionNormal},
		{"android.permission.CAMERA", models.ProtectionDangerous},
		{"android.permission.WRITE_SETTINGS", models.ProtectionSignature},
		{"android.permission.MANAGE_EXTERNAL_STORAGE", models.ProtectionSignatureOrSystem},
	}
	for _, tt := range tests {
		level, err := reg.PermissionProtectionLevel(ctx, tt.identifier)
		if err != nil {
			t.Errorf("PermissionProtectionLevel(%s) returned error: %v", tt.identifier, err)
			continue
		}
		if level != tt.want {
			t.Errorf("PermissionProtectionLevel(%s) = %s, want %s", tt.identifier, level, tt.want)
		}
	}

	if _, err := reg.PermissionProtectionLevel(ctx, "com.vendor.permission.CUSTOM"); err == nil {
		t.Error("unregistered permission resolved without error")
	}
}

func TestStaticRegistryApplicationLabel(t *testing.T) {
	reg := NewStaticRegistry()
	reg.SetLabel("com.example.app", "Example App")
	ctx := context.Background()

	label, err := reg.ApplicationLabel(ctx, "com.example.app")
	if err != nil || label != "Example App" {
		t.Errorf("ApplicationLabel = (%q, %v), want (Example App, nil)", label, err)
	}

	// Unlabeled packages fall back to the package name.
	label, err = reg.ApplicationLabel(ctx, "com.example.bare")
	if err != nil || label != "com.example.bare" {
		t.Errorf("ApplicationLabel fallback = (%q, %v)", label, err)
	}
}

func TestLoadFixture(t *testing.T) {
	fixture := `{
		"apps": [
			{
				"package_name": "com.example.app",
				"app_name": "Example",
				"requested_permissions": [
					{"identifier": "android.permission.CAMERA", "granted": true}
				]
			}
		],
		"labels": {"com.example.app": "Example App"},
		"permissions": [
			{"identifier": "com.vendor.permission.CUSTOM", "protection_level": "dangerous", "description": "vendor thing"}
		]
	}`

	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewStaticRegistry()
	if err := reg.LoadFixture(path); err != nil {
		t.Fatalf("LoadFixture returned error: %v", err)
	}

	ctx := context.Background()
	desc, err := reg.PackageInfo(ctx, "com.example.app")
	if err != nil {
		t.Fatalf("PackageInfo returned error: %v", err)
	}
	if len(desc.RequestedPermissions) != 1 || !desc.RequestedPermissions[0].Granted {
		t.Errorf("fixture permissions = %+v", desc.RequestedPermissions)
	}

	level, err := reg.PermissionProtectionLevel(ctx, "com.vendor.permission.CUSTOM")
	if err != nil || level != models.ProtectionDangerous {
		t.Errorf("fixture protection = (%s, %v), want dangerous", level, err)
	}

	description, err := reg.PermissionDescription(ctx, "com.vendor.permission.CUSTOM")
	if err != nil || description != "vendor thing" {
		t.Errorf("fixture description = (%q, %v)", description, err)
	}
}

func TestLoadFixtureRejectsMissingPackageName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"apps": [{"app_name": "Nameless"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewStaticRegistry().LoadFixture(path); err == nil {
		t.Error("fixture with a nameless app loaded without error")
	}
}
