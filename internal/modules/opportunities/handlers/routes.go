package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all opportunities routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/opportunities", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/presets", h.HandlePresets)
		r.Get("/recommendations/{kind}", h.HandleRecommendations)
	})
}
