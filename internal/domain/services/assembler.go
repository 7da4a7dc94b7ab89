package services

import (
	"context"
	"strings"

	"permscope/internal/domain/models"
	"permscope/internal/registry"
	"permscope/pkg/logger"
)

// Assembler combines a raw app descriptor, its classified and risk-scored
// permissions, and the inclusion filters into an immutable record. All
// registry reads go through the injected collaborators; there is no hidden
// state and a descriptor either yields a record or is omitted.
type Assembler struct {
	registry   registry.PackageRegistry
	classifier *Classifier
	resolver   *ProtectionResolver
	risk       *RiskEvaluator
	logger     *logger.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(reg registry.PackageRegistry, resolver *ProtectionResolver, log *logger.Logger) *Assembler {
	return &Assembler{
		registry:   reg,
		classifier: NewClassifier(),
		resolver:   resolver,
		risk:       NewRiskEvaluator(),
		logger:     log.WithComponent("assembler"),
	}
}

// Classifier exposes the classifier for reference endpoints.
func (a *Assembler) Classifier() *Classifier { return a.classifier }

// RiskEvaluator exposes the evaluator for reference endpoints.
func (a *Assembler) RiskEvaluator() *RiskEvaluator { return a.risk }

// Assemble builds the record for one descriptor, or returns (nil, nil) when
// the filters exclude it. A descriptor without a package name is rejected
// before any registry access.
func (a *Assembler) Assemble(ctx context.Context, desc models.AppDescriptor, filter models.FilterConfig) (*models.AppPermissionRecord, error) {
	if strings.TrimSpace(desc.PackageName) == "" {
		return nil, registry.ErrInvalidArgument
	}

	// Exclusion rule 1: system apps are out unless explicitly included.
	if desc.IsSystem && !filter.IncludeSystemApps {
		return nil, nil
	}
	// Exclusion rule 2: with system apps included, "useful only" keeps
	// non-system apps and user-updated system apps.
	if filter.IncludeSystemApps && filter.OnlyUsefulApps && desc.IsSystem && !desc.IsUpdatedSystem {
		return nil, nil
	}
	// Exclusion rule 3: a non-empty permission filter must intersect the
	// requested set.
	if len(filter.FilterByPermissions) > 0 && !requestsAny(desc, filter.FilterByPermissions) {
		return nil, nil
	}

	permissions := make([]models.PermissionRecord, 0, len(desc.RequestedPermissions))
	for _, requested := range desc.RequestedPermissions {
		rec := models.PermissionRecord{
			Identifier:      requested.Identifier,
			Granted:         requested.Granted,
			ProtectionLevel: a.resolver.Resolve(ctx, requested.Identifier),
		}
		rec.Category, rec.ReadableName = a.classifier.Classify(requested.Identifier)

		// Description lookup failures recover to an absent description.
		if description, err := a.registry.PermissionDescription(ctx, requested.Identifier); err == nil {
			rec.Description = description
		}

		rec.IsGenuineRisk = a.risk.IsGenuineRisk(rec)
		permissions = append(permissions, rec)
	}

	return &models.AppPermissionRecord{
		AppName:         a.resolveAppName(ctx, desc),
		PackageName:     desc.PackageName,
		VersionName:     desc.VersionName,
		VersionCode:     desc.VersionCode,
		IsSystem:        desc.IsSystem,
		IsUpdatedSystem: desc.IsUpdatedSystem,
		InstallerSource: a.resolveInstaller(ctx, desc),
		InstallTime:     desc.InstallTime,
		Permissions:     permissions,
	}, nil
}

// resolveAppName prefers the descriptor's label, then the registry's, then
// the package name.
func (a *Assembler) resolveAppName(ctx context.Context, desc models.AppDescriptor) string {
	if desc.AppName != "" && desc.AppName != desc.PackageName {
		return desc.AppName
	}
	if label, err := a.registry.ApplicationLabel(ctx, desc.PackageName); err == nil && label != "" {
		return label
	}
	return desc.PackageName
}

// resolveInstaller maps an absent installer (sideloaded/unknown) to an empty
// string, never an error.
func (a *Assembler) resolveInstaller(ctx context.Context, desc models.AppDescriptor) string {
	if desc.InstallerSource != "" {
		return desc.InstallerSource
	}
	installer, err := a.registry.InstallerPackageName(ctx, desc.PackageName)
	if err != nil {
		a.logger.Debug().Err(err).Str("package", desc.PackageName).Msg("installer lookup failed")
		return ""
	}
	return installer
}

func requestsAny(desc models.AppDescriptor, identifiers []string) bool {
	wanted := make(map[string]struct{}, len(identifiers))
	for _, id := range identifiers {
		wanted[id] = struct{}{}
	}
	for _, requested := range desc.RequestedPermissions {
		if _, ok := wanted[requested.Identifier]; ok {
			return true
		}
	}
	return false
}
