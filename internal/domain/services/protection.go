package services

import (
	"context"
	"strings"
	"time"

	"permscope/internal/domain/models"
	"permscope/internal/infrastructure/cache"
	"permscope/internal/registry"
	"permscope/pkg/logger"
)

// ProtectionResolver maps a permission identifier to its OS-assigned
// protection level through the package registry. Lookup failures resolve to
// ProtectionUnknown and are never surfaced to callers.
type ProtectionResolver struct {
	registry registry.PackageRegistry
	cache    *cache.TTLCache
	logger   *logger.Logger
}

// NewProtectionResolver creates a resolver. The cache is optional; without
// one every resolution hits the registry.
func NewProtectionResolver(reg registry.PackageRegistry, ttlCache *cache.TTLCache, log *logger.Logger) *ProtectionResolver {
	return &ProtectionResolver{
		registry: reg,
		cache:    ttlCache,
		logger:   log.WithComponent("protection-resolver"),
	}
}

// NewProtectionResolverWithTTL creates a resolver with its own lookup cache.
func NewProtectionResolverWithTTL(reg registry.PackageRegistry, ttl time.Duration, log *logger.Logger) *ProtectionResolver {
	return NewProtectionResolver(reg, cache.NewTTL(nil, ttl), log)
}

// Resolve never fails: an empty identifier, an unregistered custom
// permission, or a registry error all resolve to ProtectionUnknown.
func (r *ProtectionResolver) Resolve(ctx context.Context, identifier string) models.ProtectionLevel {
	if strings.TrimSpace(identifier) == "" {
		return models.ProtectionUnknown
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(identifier); ok {
			return models.ProtectionLevel(cached)
		}
	}

	level, err := r.registry.PermissionProtectionLevel(ctx, identifier)
	if err != nil {
		r.logger.Debug().Err(err).Str("identifier", identifier).Msg("protection lookup failed, resolving to unknown")
		return models.ProtectionUnknown
	}

	if r.cache != nil {
		r.cache.Set(identifier, string(level))
	}
	return level
}
