package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all balance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/balances", func(r chi.Router) {
		r.Get("/runs", h.HandleGetRuns)
		r.Get("/{kind}", h.HandleGetBalances)
		r.Post("/{kind}/recompute", h.HandleRecompute)
	})
}
