package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers copy-trading routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/strategies", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandlePublish)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/follow", h.HandleFollow)
	})
}
