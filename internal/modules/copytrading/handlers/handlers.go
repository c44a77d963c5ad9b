// Package handlers provides HTTP handlers for copy-trading strategies.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/yieldrouter/internal/modules/copytrading"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const defaultListLimit = 50

// Handler handles copy-trading HTTP requests
type Handler struct {
	service  *copytrading.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new copy-trading handler
func NewHandler(service *copytrading.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("handler", "copytrading").Logger(),
	}
}

// FollowRequest is the body of POST /api/strategies/{id}/follow
type FollowRequest struct {
	Follower  string  `json:"follower" validate:"required"`
	AmountUSD float64 `json:"amount_usd" validate:"gt=0"`
}

// HandleList handles GET /api/strategies
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	strategies, err := h.service.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list strategies")
		h.writeError(w, http.StatusInternalServerError, "Failed to list strategies")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": strategies,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(strategies),
		},
	})
}

// HandlePublish handles POST /api/strategies
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var req copytrading.PublishInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strategy, err := h.service.Publish(req)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": strategy,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGet handles GET /api/strategies/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	strategy, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": strategy,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleFollow handles POST /api/strategies/{id}/follow
func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strategy, err := h.service.Follow(chi.URLParam(r, "id"), req.Follower, req.AmountUSD)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": strategy,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeLookupError maps service errors to status codes.
func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, copytrading.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Strategy not found")
		return
	case errors.Is(err, copytrading.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Strategy request failed")
	h.writeError(w, http.StatusInternalServerError, "Strategy request failed")
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
