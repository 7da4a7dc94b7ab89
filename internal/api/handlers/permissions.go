package handlers

import (
	"encoding/json"
	"net/http"

	"permscope/internal/domain/models"
	"permscope/internal/domain/services"
	"permscope/pkg/logger"
)

// PermissionsHandler serves classification and reference-data endpoints.
type PermissionsHandler struct {
	assembler *services.Assembler
	resolver  *services.ProtectionResolver
	logger    *logger.Logger
}

// NewPermissionsHandler creates a new PermissionsHandler
func NewPermissionsHandler(assembler *services.Assembler, resolver *services.ProtectionResolver, log *logger.Logger) *PermissionsHandler {
	return &PermissionsHandler{
		assembler: assembler,
		resolver:  resolver,
		logger:    log.WithComponent("permissions-handler"),
	}
}

// ClassifyRequest asks for classification of one or more identifiers.
type ClassifyRequest struct {
	Identifiers []string `json:"identifiers"`
}

// Classify handles POST /api/v1/permissions/classify. Each identifier is
// classified, resolved against the registry, and risk-evaluated as if it
// were granted.
func (h *PermissionsHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Identifiers) == 0 {
		h.respondError(w, http.StatusBadRequest, "identifiers is required")
		return
	}

	classifier := h.assembler.Classifier()
	evaluator := h.assembler.RiskEvaluator()

	results := make([]models.PermissionRecord, 0, len(req.Identifiers))
	for _, identifier := range req.Identifiers {
		rec := models.PermissionRecord{
			Identifier:      identifier,
			Granted:         true,
			ProtectionLevel: h.resolver.Resolve(r.Context(), identifier),
		}
		rec.Category, rec.ReadableName = classifier.Classify(identifier)
		rec.IsGenuineRisk = evaluator.IsGenuineRisk(rec)
		results = append(results, rec)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(results),
		"results": results,
	})
}

// Reference handles GET /api/v1/permissions/reference. It exposes the
// classification rule table and the risk keyword sets.
func (h *PermissionsHandler) Reference(w http.ResponseWriter, r *http.Request) {
	classifier := h.assembler.Classifier()
	evaluator := h.assembler.RiskEvaluator()

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories":         classifier.Rules(),
		"fallback_category":  services.CategoryOther,
		"routine_allowlist":  evaluator.RoutineAllowlist(),
		"sensitive_keywords": evaluator.SensitiveKeywords(),
	})
}

func (h *PermissionsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PermissionsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
