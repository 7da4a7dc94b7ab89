package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"permscope/internal/domain/services"
	"permscope/internal/registry"
	"permscope/pkg/logger"
)

// AppsHandler serves query endpoints over the latest published scan.
type AppsHandler struct {
	scanner *services.ScanService
	logger  *logger.Logger
}

// NewAppsHandler creates a new AppsHandler
func NewAppsHandler(scanner *services.ScanService, log *logger.Logger) *AppsHandler {
	return &AppsHandler{
		scanner: scanner,
		logger:  log.WithComponent("apps-handler"),
	}
}

// List handles GET /api/v1/apps
func (h *AppsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.scanner.Apps()
	if err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(records),
		"records": records,
	})
}

// Get handles GET /api/v1/apps/{package}
func (h *AppsHandler) Get(w http.ResponseWriter, r *http.Request) {
	packageName := chi.URLParam(r, "package")
	if packageName == "" {
		h.respondError(w, http.StatusBadRequest, "package is required")
		return
	}

	record, err := h.scanner.App(packageName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrScanNotReady):
			h.respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, registry.ErrPackageNotFound):
			h.respondError(w, http.StatusNotFound, "package not found in latest scan")
		default:
			h.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	h.respondJSON(w, http.StatusOK, record)
}

// Aggregate handles GET /api/v1/aggregate
func (h *AppsHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		topN = n
	}

	aggregate, err := h.scanner.AggregateTop(topN)
	if err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, aggregate)
}

func (h *AppsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *AppsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
