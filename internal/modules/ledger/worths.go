package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// worthLayouts are the accepted snapshot timestamp formats, most precise first
var worthLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// WorthRepository reads observed worths of one category kind
type WorthRepository struct {
	repository
	table          string
	categoryColumn string
	categoryTable  string
}

// NewAccountWorthRepository reads account_worths
func NewAccountWorthRepository(db *sql.DB, log zerolog.Logger) *WorthRepository {
	return newWorthRepository(db, log, "account_worths", "account_id", "accounts")
}

// NewSavingWorthRepository reads saving_worths
func NewSavingWorthRepository(db *sql.DB, log zerolog.Logger) *WorthRepository {
	return newWorthRepository(db, log, "saving_worths", "saving_type_id", "saving_types")
}

// NewPensionWorthRepository reads pension_worths
func NewPensionWorthRepository(db *sql.DB, log zerolog.Logger) *WorthRepository {
	return newWorthRepository(db, log, "pension_worths", "pension_type_id", "pension_types")
}

func newWorthRepository(db *sql.DB, log zerolog.Logger, table, categoryColumn, categoryTable string) *WorthRepository {
	return &WorthRepository{
		repository:     newRepository(db, log, table),
		table:          table,
		categoryColumn: categoryColumn,
		categoryTable:  categoryTable,
	}
}

// Have returns, per category and year, the most recent observed worth
func (r *WorthRepository) Have(ctx context.Context, owner domain.OwnerScope) ([]domain.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT w.%[1]s, w.date, w.price
		FROM %[2]s w JOIN %[3]s c ON c.id = w.%[1]s
		WHERE c.journal_id = ?
		ORDER BY w.%[1]s, w.date`, r.categoryColumn, r.table, r.categoryTable)

	rows, err := r.db.QueryContext(ctx, query, owner.JournalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	type key struct {
		id   int64
		year int
	}
	latest := make(map[key]int)
	var out []domain.Snapshot
	for rows.Next() {
		var (
			categoryID int64
			date       string
			price      decimal.Decimal
		)
		if err := rows.Scan(&categoryID, &date, &price); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}

		at, err := parseWorthTime(date)
		if err != nil {
			return nil, fmt.Errorf("invalid %s date for category %d: %w", r.table, categoryID, err)
		}

		snap := domain.Snapshot{CategoryID: categoryID, Year: at.Year(), Have: price, LatestCheck: at}
		k := key{categoryID, snap.Year}
		if i, ok := latest[k]; ok {
			if !out[i].LatestCheck.After(at) {
				out[i] = snap
			}
			continue
		}
		latest[k] = len(out)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", r.table, err)
	}

	return out, nil
}

func parseWorthTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range worthLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
