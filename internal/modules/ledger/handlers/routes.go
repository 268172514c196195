package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/journals", h.HandleGetJournals)
		r.Get("/categories/{kind}", h.HandleGetCategories)

		// Change notifications from ledger writers
		r.Post("/changes", h.HandlePostChange)
	})
}
