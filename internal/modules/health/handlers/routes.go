package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers health factor routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/health", func(r chi.Router) {
		r.Post("/limits", h.HandleLimits)
		r.Post("/validate", h.HandleValidate)
	})
}
