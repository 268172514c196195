// Package handlers provides HTTP handlers for balance recomputes and reads.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/modules/balances"
	"github.com/rs/zerolog"
)

// Recomputer triggers a reconciliation
type Recomputer interface {
	Recompute(ctx context.Context, owner domain.OwnerScope, kind domain.ProfileKind) (*balances.SyncResult, error)
}

// BalanceReader reads persisted balance rows
type BalanceReader interface {
	Load(ctx context.Context, owner domain.OwnerScope, p balances.Profile) (balances.Table, error)
}

// RunLister lists recent sync runs
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]balances.SyncRun, error)
}

// Handler handles balance HTTP requests
type Handler struct {
	service Recomputer
	reader  BalanceReader
	runs    RunLister
	log     zerolog.Logger
}

// NewHandler creates a new balances handler
func NewHandler(
	service Recomputer,
	reader BalanceReader,
	runs RunLister,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service: service,
		reader:  reader,
		runs:    runs,
		log:     log.With().Str("handler", "balances").Logger(),
	}
}

// balanceRow is the JSON form of a persisted row
type balanceRow struct {
	ID          int64              `json:"id"`
	CategoryID  int64              `json:"category_id"`
	Year        int                `json:"year"`
	Values      map[string]float64 `json:"values"`
	LatestCheck *time.Time         `json:"latest_check"`
}

// HandleRecompute handles POST /api/balances/{kind}/recompute?journal=ID
func (h *Handler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	owner, kind, ok := h.parseScope(w, r)
	if !ok {
		return
	}

	result, err := h.service.Recompute(r.Context(), owner, kind)
	if err != nil {
		h.log.Error().Err(err).Int64("journal_id", owner.JournalID).Str("profile", string(kind)).Msg("Recompute failed")
		h.writeError(w, http.StatusInternalServerError, "Failed to recompute balances")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

// HandleGetBalances handles GET /api/balances/{kind}?journal=ID
func (h *Handler) HandleGetBalances(w http.ResponseWriter, r *http.Request) {
	owner, kind, ok := h.parseScope(w, r)
	if !ok {
		return
	}

	profile, err := balances.ProfileFor(kind)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := h.reader.Load(r.Context(), owner, profile)
	if err != nil {
		h.log.Error().Err(err).Int64("journal_id", owner.JournalID).Msg("Failed to load balances")
		h.writeError(w, http.StatusInternalServerError, "Failed to load balances")
		return
	}

	rows := make([]balanceRow, 0, len(table))
	for _, row := range table {
		values := make(map[string]float64, len(row.Values))
		for f, v := range row.Values {
			values[string(f)] = v
		}
		rows = append(rows, balanceRow{
			ID:          row.ID,
			CategoryID:  row.CategoryID,
			Year:        row.Year,
			Values:      values,
			LatestCheck: row.LatestCheck,
		})
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"journal_id": owner.JournalID,
		"profile":    kind,
		"rows":       rows,
		"count":      len(rows),
	}))
}

// HandleGetRuns handles GET /api/balances/runs?limit=N
func (h *Handler) HandleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sync runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list sync runs")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	}))
}

func (h *Handler) parseScope(w http.ResponseWriter, r *http.Request) (domain.OwnerScope, domain.ProfileKind, bool) {
	kind, err := domain.ParseProfileKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return domain.OwnerScope{}, "", false
	}

	owner, err := domain.ParseOwnerScope(r.URL.Query().Get("journal"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return domain.OwnerScope{}, "", false
	}

	return owner, kind, true
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
