// Package handlers provides HTTP handlers for opportunity queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/yieldrouter/internal/domain"
	"github.com/aristath/yieldrouter/internal/modules/opportunities"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Handler handles opportunity HTTP requests
type Handler struct {
	service  *opportunities.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new opportunities handler
func NewHandler(service *opportunities.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("handler", "opportunities").Logger(),
	}
}

// configQuery mirrors the query string accepted by the listing endpoints.
type configQuery struct {
	Preset        string  `validate:"omitempty,oneof=conservative balanced aggressive"`
	RiskTolerance string  `validate:"omitempty,oneof=low medium high"`
	MaxRisk       string  `validate:"omitempty,oneof=low medium high"`
	MinAPY        float64 `validate:"gte=0"`
	MinTVL        float64 `validate:"gte=0"`
	Chains        []string
	Exclude       []string `validate:"dive,oneof=vault-aggregator pool-protocol lending-protocol social-copy"`
}

// HandleList handles GET /api/opportunities
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked, sources, err := h.service.Ranked(r.Context(), cfg)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rank opportunities")
		h.writeError(w, statusFor(err), "Failed to load opportunities")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"opportunities": ranked,
			"count":         len(ranked),
			"config":        cfg,
			"sources":       sources,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleRecommendations handles GET /api/opportunities/recommendations/{kind}
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	cfg, err := h.configFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked, _, err := h.service.Ranked(r.Context(), cfg)
	if err != nil {
		h.log.Error().Err(err).Str("kind", kind).Msg("Failed to rank opportunities")
		h.writeError(w, statusFor(err), "Failed to load opportunities")
		return
	}

	recommended, err := opportunities.Recommend(kind, ranked)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"kind":            kind,
			"recommendations": recommended,
			"count":           len(recommended),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandlePresets handles GET /api/opportunities/presets
func (h *Handler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"presets": opportunities.Presets,
			"default": opportunities.DefaultPreset,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// configFromQuery builds a RouterConfig from query parameters. A preset is the
// base and individual parameters override it.
func (h *Handler) configFromQuery(values url.Values) (opportunities.RouterConfig, error) {
	q := configQuery{
		Preset:        strings.ToLower(values.Get("preset")),
		RiskTolerance: strings.ToLower(values.Get("risk_tolerance")),
		MaxRisk:       strings.ToLower(values.Get("max_risk")),
		Chains:        splitList(values.Get("chain")),
		Exclude:       splitList(values.Get("exclude")),
	}

	var err error
	if q.MinAPY, err = parseFloat(values, "min_apy"); err != nil {
		return opportunities.RouterConfig{}, err
	}
	if q.MinTVL, err = parseFloat(values, "min_tvl"); err != nil {
		return opportunities.RouterConfig{}, err
	}
	if err := h.validate.Struct(q); err != nil {
		return opportunities.RouterConfig{}, err
	}

	cfg, err := opportunities.ResolveConfig(q.Preset, nil)
	if err != nil {
		return opportunities.RouterConfig{}, err
	}

	if q.RiskTolerance != "" {
		cfg.RiskTolerance = domain.RiskTier(q.RiskTolerance)
	}
	if q.MaxRisk != "" {
		cfg.MaxRisk = domain.RiskTier(q.MaxRisk)
	}
	if values.Has("min_apy") {
		cfg.MinAPY = q.MinAPY
	}
	if values.Has("min_tvl") {
		cfg.MinTVL = q.MinTVL
	}
	if len(q.Chains) > 0 {
		cfg.Chains = q.Chains
	}
	for _, s := range q.Exclude {
		cfg.ExcludeSources = append(cfg.ExcludeSources, domain.Source(s))
	}

	return cfg, cfg.Validate()
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

func parseFloat(values url.Values, key string) (float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid " + key + ": " + raw)
	}
	return v, nil
}

func statusFor(err error) int {
	if errors.Is(err, opportunities.ErrNoCatalog) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
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
