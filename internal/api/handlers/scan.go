package handlers

import (
	"encoding/json"
	"net/http"

	"permscope/internal/domain/services"
	"permscope/pkg/logger"
)

// ScanHandler handles scan lifecycle endpoints
type ScanHandler struct {
	scanner *services.ScanService
	logger  *logger.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scanner *services.ScanService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: scanner,
		logger:  log.WithComponent("scan-handler"),
	}
}

// StartScanRequest optionally overrides the configured scan filters.
type StartScanRequest struct {
	IncludeSystemApps   *bool    `json:"include_system_apps,omitempty"`
	OnlyUsefulApps      *bool    `json:"only_useful_apps,omitempty"`
	FilterByPermissions []string `json:"filter_by_permissions,omitempty"`
}

// Start handles POST /api/v1/scan. The scan runs asynchronously; clients
// poll GET /api/v1/scan or subscribe to the WebSocket feed for completion.
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	filter := h.scanner.DefaultFilter()

	if r.ContentLength > 0 {
		var req StartScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.IncludeSystemApps != nil {
			filter.IncludeSystemApps = *req.IncludeSystemApps
		}
		if req.OnlyUsefulApps != nil {
			filter.OnlyUsefulApps = *req.OnlyUsefulApps
		}
		filter.FilterByPermissions = req.FilterByPermissions
	}

	status := h.scanner.StartScan(r.Context(), filter)
	h.respondJSON(w, http.StatusAccepted, status)
}

// Status handles GET /api/v1/scan
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.scanner.Status())
}

// Result handles GET /api/v1/scan/result
func (h *ScanHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.scanner.Result()
	if err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *ScanHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ScanHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
