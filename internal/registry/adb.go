package registry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"permscope/internal/domain/models"
	"permscope/pkg/logger"
)

// commandRunner executes an external command and captures stdout. Split out
// so the adb backend can be tested against canned dumpsys output.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ADBRegistry reads the package registry of a connected Android device
// through the adb command line tool.
type ADBRegistry struct {
	adbPath string
	serial  string
	timeout time.Duration
	runner  commandRunner
	logger  *logger.Logger
}

// ADBConfig configures the adb-backed registry.
type ADBConfig struct {
	ADBPath string
	Serial  string
	Timeout time.Duration
}

// NewADBRegistry creates a registry backed by adb.
func NewADBRegistry(cfg ADBConfig, log *logger.Logger) *ADBRegistry {
	path := cfg.ADBPath
	if path == "" {
		path = "adb"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ADBRegistry{
		adbPath: path,
		serial:  cfg.Serial,
		timeout: timeout,
		runner:  execRunner{},
		logger:  log.WithComponent("adb-registry"),
	}
}

// shell runs an adb shell command against the configured device.
func (r *ADBRegistry) shell(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	full := make([]string, 0, len(args)+3)
	if r.serial != "" {
		full = append(full, "-s", r.serial)
	}
	full = append(full, "shell")
	full = append(full, args...)

	out, err := r.runner.Run(ctx, r.adbPath, full...)
	if err != nil {
		return out, NewSystemError("adb_unreachable", err)
	}
	return out, nil
}

// ListInstalledPackages enumerates every package via a single bulk dump.
func (r *ADBRegistry) ListInstalledPackages(ctx context.Context) ([]models.AppDescriptor, error) {
	out, err := r.shell(ctx, "dumpsys", "package", "packages")
	if err != nil {
		return nil, err
	}

	descriptors, parseErrs := parsePackageDump(out)
	for _, perr := range parseErrs {
		r.logger.Warn().Err(perr).Msg("skipping malformed package entry")
	}

	r.logger.Debug().
		Int("packages", len(descriptors)).
		Int("rejected", len(parseErrs)).
		Msg("package enumeration completed")

	return descriptors, nil
}

// PackageInfo looks up a single package by name.
func (r *ADBRegistry) PackageInfo(ctx context.Context, packageName string) (*models.AppDescriptor, error) {
	if strings.TrimSpace(packageName) == "" {
		return nil, ErrInvalidArgument
	}

	out, err := r.shell(ctx, "dumpsys", "package", packageName)
	if err != nil {
		return nil, err
	}

	descriptors, parseErrs := parsePackageDump(out)
	for _, perr := range parseErrs {
		r.logger.Warn().Err(perr).Str("package", packageName).Msg("malformed package entry")
	}
	for i := range descriptors {
		if descriptors[i].PackageName == packageName {
			return &descriptors[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, packageName)
}

// InstallerPackageName resolves the installer of a package; empty for
// sideloaded or unknown sources.
func (r *ADBRegistry) InstallerPackageName(ctx context.Context, packageName string) (string, error) {
	if strings.TrimSpace(packageName) == "" {
		return "", ErrInvalidArgument
	}

	desc, err := r.PackageInfo(ctx, packageName)
	if err != nil {
		return "", err
	}
	return desc.InstallerSource, nil
}

// PermissionProtectionLevel resolves the protection level of one permission.
func (r *ADBRegistry) PermissionProtectionLevel(ctx context.Context, identifier string) (models.ProtectionLevel, error) {
	if strings.TrimSpace(identifier) == "" {
		return models.ProtectionUnknown, ErrInvalidArgument
	}

	out, err := r.shell(ctx, "dumpsys", "package", "permission", identifier)
	if err != nil {
		return models.ProtectionUnknown, err
	}

	raw, ok := parsePermissionDump(out, identifier)
	if !ok {
		return models.ProtectionUnknown, fmt.Errorf("permission %s not registered", identifier)
	}
	return models.ParseProtectionLevel(raw), nil
}

// PermissionDescription is unavailable through dumpsys; always empty.
func (r *ADBRegistry) PermissionDescription(ctx context.Context, identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", ErrInvalidArgument
	}
	return "", nil
}

// ApplicationLabel cannot be resolved without parsing the apk; the package
// name is the documented fallback.
func (r *ADBRegistry) ApplicationLabel(ctx context.Context, packageName string) (string, error) {
	if strings.TrimSpace(packageName) == "" {
		return "", ErrInvalidArgument
	}
	return packageName, nil
}
