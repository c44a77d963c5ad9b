// Package handlers provides HTTP handlers for health factor math.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/modules/health"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Handler handles health factor HTTP requests
type Handler struct {
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new health handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		validate: validator.New(),
		log:      log.With().Str("handler", "health").Logger(),
	}
}

// PositionRequest is a lending position as posted by clients.
type PositionRequest struct {
	Collateral           float64 `json:"collateral" validate:"gte=0"`
	Debt                 float64 `json:"debt" validate:"gte=0"`
	AvailableToBorrow    float64 `json:"available_to_borrow" validate:"gte=0"`
	LiquidationThreshold float64 `json:"liquidation_threshold" validate:"gt=0,lte=100"`
}

func (p PositionRequest) toDomain() domain.LendingPosition {
	return domain.LendingPosition{
		TotalCollateralUSD:   p.Collateral,
		TotalDebtUSD:         p.Debt,
		AvailableToBorrowUSD: p.AvailableToBorrow,
		LiquidationThreshold: p.LiquidationThreshold,
		HealthFactor:         health.Factor(p.Collateral, p.Debt, p.LiquidationThreshold),
	}
}

// ValidateRequest is the body of POST /api/health/validate
type ValidateRequest struct {
	Action   string          `json:"action" validate:"required,oneof=withdraw borrow repay"`
	Amount   float64         `json:"amount"`
	Position PositionRequest `json:"position"`
}

// HandleLimits handles POST /api/health/limits
func (h *Handler) HandleLimits(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": health.ComputeLimits(req.toDomain()),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleValidate handles POST /api/health/validate.
// The outcome is always 200; a blocking result is signalled by level=error.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := health.Validate(health.Action(req.Action), req.Amount, req.Position.toDomain())

	h.log.Debug().
		Str("action", req.Action).
		Float64("amount", req.Amount).
		Str("level", string(result.Level)).
		Msg("Validated lending action")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
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
