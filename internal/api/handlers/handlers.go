package handlers

import (
	"permscope/internal/domain/services"
	"permscope/internal/infrastructure/cache"
	"permscope/internal/streaming"
	"permscope/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health      *HealthHandler
	Scan        *ScanHandler
	Apps        *AppsHandler
	Permissions *PermissionsHandler
	Streaming   *StreamingHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Scanner   *services.ScanService
	Assembler *services.Assembler
	Resolver  *services.ProtectionResolver
	Cache     *cache.RedisCache
	Hub       *streaming.WebSocketHub
	Logger    *logger.Logger
	Version   string
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Cache, deps.Scanner, deps.Version, deps.Logger),
		Scan:        NewScanHandler(deps.Scanner, deps.Logger),
		Apps:        NewAppsHandler(deps.Scanner, deps.Logger),
		Permissions: NewPermissionsHandler(deps.Assembler, deps.Resolver, deps.Logger),
		Streaming:   NewStreamingHandler(deps.Hub, deps.Logger),
	}
}
