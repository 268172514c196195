// Package handlers provides HTTP handlers for ledger lookups and change notifications.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/homebooks/balances/internal/modules/ledger"
	"github.com/rs/zerolog"
)

// JournalLister lists journals
type JournalLister interface {
	List(ctx context.Context) ([]ledger.Journal, error)
}

// Emitter publishes events
type Emitter interface {
	Emit(module string, data events.EventData)
}

// Handler handles ledger HTTP requests
type Handler struct {
	journals   JournalLister
	categories map[domain.ProfileKind]domain.CategorySource
	emitter    Emitter
	log        zerolog.Logger
}

// NewHandler creates a new ledger handler. categories maps each profile to
// its category registry.
func NewHandler(
	journals JournalLister,
	categories map[domain.ProfileKind]domain.CategorySource,
	emitter Emitter,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		journals:   journals,
		categories: categories,
		emitter:    emitter,
		log:        log.With().Str("handler", "ledger").Logger(),
	}
}

// changeRequest is the body of POST /api/ledger/changes
type changeRequest struct {
	JournalID int64  `json:"journal_id"`
	Source    string `json:"source"`
}

// HandleGetJournals handles GET /api/ledger/journals
func (h *Handler) HandleGetJournals(w http.ResponseWriter, r *http.Request) {
	journals, err := h.journals.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query journals")
		http.Error(w, "Failed to query journals", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"journals": journals,
			"count":    len(journals),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetCategories handles GET /api/ledger/categories/{kind}?journal=ID
func (h *Handler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseProfileKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	source, ok := h.categories[kind]
	if !ok {
		http.Error(w, "No category registry for "+string(kind), http.StatusNotFound)
		return
	}

	owner, err := domain.ParseOwnerScope(r.URL.Query().Get("journal"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	categories, err := source.Related(r.Context(), owner)
	if err != nil {
		h.log.Error().Err(err).Str("profile", string(kind)).Msg("Failed to query categories")
		http.Error(w, "Failed to query categories", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"journal_id": owner.JournalID,
			"profile":    kind,
			"categories": categories,
			"count":      len(categories),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandlePostChange handles POST /api/ledger/changes. The writer of a ledger
// record reports it here so dependent balances are recomputed.
func (h *Handler) HandlePostChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := domain.NewOwnerScope(req.JournalID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		http.Error(w, "source is required", http.StatusBadRequest)
		return
	}

	h.log.Info().
		Int64("journal_id", req.JournalID).
		Str("source", req.Source).
		Msg("Ledger change reported")

	h.emitter.Emit("ledger", &events.LedgerChangedData{
		JournalID: req.JournalID,
		Source:    req.Source,
	})

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"accepted":   true,
			"journal_id": req.JournalID,
			"source":     req.Source,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusAccepted, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
