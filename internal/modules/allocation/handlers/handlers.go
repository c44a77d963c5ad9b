// Package handlers provides HTTP handlers for allocation planning.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/yieldrouter/internal/modules/allocation"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Handler handles allocation HTTP requests
type Handler struct {
	service  *allocation.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service *allocation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("handler", "allocation").Logger(),
	}
}

// PlanRequest is the body of POST /api/allocations
type PlanRequest struct {
	Amount       float64                     `json:"amount" validate:"gte=0"`
	MaxPositions int                         `json:"max_positions" validate:"gte=0,lte=50"`
	Preset       string                      `json:"preset" validate:"omitempty,oneof=conservative balanced aggressive"`
	Config       *opportunities.RouterConfig `json:"config,omitempty"`
}

// HandlePlan handles POST /api/allocations
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := opportunities.ResolveConfig(req.Preset, req.Config)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Plan(r.Context(), req.Amount, req.MaxPositions, cfg)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute allocation")
		h.writeError(w, http.StatusServiceUnavailable, "Failed to compute allocation")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"allocation": result,
			"config":     cfg,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
