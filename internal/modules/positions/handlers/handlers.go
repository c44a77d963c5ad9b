// Package handlers provides HTTP handlers for unified positions.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/modules/positions"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Handler handles position HTTP requests
type Handler struct {
	service  *positions.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new positions handler
func NewHandler(service *positions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("handler", "positions").Logger(),
	}
}

// HoldingRequest is one pool holding in a request body.
type HoldingRequest struct {
	Symbol       string  `json:"symbol" validate:"required"`
	ShareBalance float64 `json:"share_balance" validate:"gte=0"`
	ValueUSD     float64 `json:"value_usd" validate:"gte=0"`
}

// LendingRequest is a normalized lending position in a request body.
type LendingRequest struct {
	TotalCollateralUSD   float64 `json:"total_collateral_usd" validate:"gte=0"`
	TotalDebtUSD         float64 `json:"total_debt_usd" validate:"gte=0"`
	AvailableToBorrowUSD float64 `json:"available_to_borrow_usd" validate:"gte=0"`
	LoanToValue          float64 `json:"loan_to_value" validate:"gte=0,lte=100"`
	LiquidationThreshold float64 `json:"liquidation_threshold" validate:"gte=0,lte=100"`
}

// UnifiedRequest is the body of POST /api/positions/unified
type UnifiedRequest struct {
	Lending    LendingRequest     `json:"lending"`
	Pools      []HoldingRequest   `json:"pools" validate:"dive"`
	LendingAPY *float64           `json:"lending_apy" validate:"omitempty,gte=0"`
	PoolAPYs   map[string]float64 `json:"pool_apys"`
}

func (r UnifiedRequest) snapshot() positions.Snapshot {
	holdings := make([]domain.PoolHolding, 0, len(r.Pools))
	for _, p := range r.Pools {
		holdings = append(holdings, domain.PoolHolding{
			Symbol:       p.Symbol,
			ShareBalance: p.ShareBalance,
			ValueUSD:     p.ValueUSD,
		})
	}

	return positions.Snapshot{
		Lending: domain.LendingPosition{
			TotalCollateralUSD:   r.Lending.TotalCollateralUSD,
			TotalDebtUSD:         r.Lending.TotalDebtUSD,
			AvailableToBorrowUSD: r.Lending.AvailableToBorrowUSD,
			LoanToValue:          r.Lending.LoanToValue,
			LiquidationThreshold: r.Lending.LiquidationThreshold,
		},
		Pools:      domain.NewPoolPosition(holdings),
		LendingAPY: r.LendingAPY,
		PoolAPYs:   r.PoolAPYs,
	}
}

// HandleUnified handles POST /api/positions/unified
func (h *Handler) HandleUnified(w http.ResponseWriter, r *http.Request) {
	var req UnifiedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot := req.snapshot()
	aggregator := h.service.Aggregator()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"position":     aggregator.Aggregate(snapshot),
			"apy":          aggregator.APY(snapshot),
			"pool_weights": aggregator.PoolWeights(snapshot.Pools),
		},
		"metadata": map[string]interface{}{
			"timestamp":        time.Now().Format(time.RFC3339),
			"fallback_version": domain.DefaultFallbackAPYs.Version,
		},
	})
}

// HandleGetAccount handles GET /api/positions/{account}
func (h *Handler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if err := h.validate.Var(account, "required,eth_addr"); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account address")
		return
	}

	position, err := h.service.Unified(r.Context(), account)
	if err != nil {
		h.log.Error().Err(err).Str("account", account).Msg("Failed to build unified position")
		h.writeError(w, http.StatusBadGateway, "Failed to load position")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": position,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"account":   account,
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
