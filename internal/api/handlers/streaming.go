package handlers

import (
	"encoding/json"
	"net/http"

	"permscope/internal/streaming"
	"permscope/pkg/logger"
)

// StreamingHandler exposes the WebSocket feed and its stats.
type StreamingHandler struct {
	hub    *streaming.WebSocketHub
	logger *logger.Logger
}

// NewStreamingHandler creates a new StreamingHandler
func NewStreamingHandler(hub *streaming.WebSocketHub, log *logger.Logger) *StreamingHandler {
	return &StreamingHandler{
		hub:    hub,
		logger: log.WithComponent("streaming-handler"),
	}
}

// HandleWebSocket handles GET /ws/scans
func (h *StreamingHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWebSocket(w, r)
}

// GetStats handles GET /api/v1/streaming/stats
func (h *StreamingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"connected_clients": h.hub.ClientCount(),
	})
}
