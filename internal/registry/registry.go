package registry

import (
	"context"
	"errors"
	"fmt"

	"permscope/internal/domain/models"
)

// Sentinel errors for per-item and argument failures.
var (
	// ErrPackageNotFound means a requested package is absent from the registry.
	// In bulk queries this is a per-item omission, not an operation failure.
	ErrPackageNotFound = errors.New("package not found")

	// ErrInvalidArgument means a required identifier or package name was
	// missing or empty. Rejected before any registry access.
	ErrInvalidArgument = errors.New("invalid argument")
)

// SystemError is an operation-level infrastructure failure: the registry
// itself was unreachable or returned inconsistent data. It carries a
// machine-readable code for the API boundary.
type SystemError struct {
	Code string
	Err  error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("registry system error [%s]: %v", e.Code, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

// NewSystemError wraps err with a machine-readable code.
func NewSystemError(code string, err error) *SystemError {
	return &SystemError{Code: code, Err: err}
}

// PackageRegistry is the external, OS-owned source of installed application
// metadata and permission grants. Implementations must be safe for concurrent
// read access; they read OS-owned state, never state owned by the engine.
type PackageRegistry interface {
	// ListInstalledPackages enumerates all installed packages. Per-item
	// parse failures are skipped so partial results win over total failure.
	ListInstalledPackages(ctx context.Context) ([]models.AppDescriptor, error)

	// PackageInfo looks up a single package. Returns ErrPackageNotFound
	// when the package is absent.
	PackageInfo(ctx context.Context, packageName string) (*models.AppDescriptor, error)

	// InstallerPackageName resolves where a package was installed from.
	// Absence (sideloaded/unknown) yields an empty string, not an error.
	InstallerPackageName(ctx context.Context, packageName string) (string, error)

	// PermissionProtectionLevel resolves the OS-assigned sensitivity of a
	// permission identifier. A failed lookup is an error the caller
	// recovers locally to ProtectionUnknown.
	PermissionProtectionLevel(ctx context.Context, identifier string) (models.ProtectionLevel, error)

	// PermissionDescription resolves the human-readable description of a
	// permission; empty when unavailable.
	PermissionDescription(ctx context.Context, identifier string) (string, error)

	// ApplicationLabel resolves the display name of a package. Callers
	// fall back to the package name on failure.
	ApplicationLabel(ctx context.Context, packageName string) (string, error)
}
