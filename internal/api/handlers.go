package api

import (
	"encoding/json"
	"net/http"

	"github.com/shehryarbajwa/tvsnap/internal/stats"
	"github.com/shehryarbajwa/tvsnap/pkg/models"
)

// StateReporter exposes the capture engine's lifecycle state.
type StateReporter interface {
	State() models.EngineState
}

// Handler holds dependencies for the debug HTTP surface.
type Handler struct {
	engine StateReporter
	stats  *stats.Collector
}

// NewHandler creates a new HTTP handler.
func NewHandler(engine StateReporter, collector *stats.Collector) *Handler {
	return &Handler{
		engine: engine,
		stats:  collector,
	}
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"engine": string(h.engine.State()),
	})
}

// Stats handles GET /v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats.Snapshot())
}
