package balances

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
)

// Repository reads persisted balance rows from the balances database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a balance repository over the balances database connection
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "balances").Logger(),
	}
}

// Load returns every persisted row of profile p owned by owner, sorted by key
func (r *Repository) Load(ctx context.Context, owner domain.OwnerScope, p Profile) (Table, error) {
	st := p.Storage()
	fields := p.Fields()

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = string(f)
	}

	query := fmt.Sprintf(
		`SELECT id, %s, year, %s, latest_check FROM %s WHERE journal_id = ? ORDER BY %s, year`,
		st.CategoryColumn, strings.Join(cols, ", "), st.Table, st.CategoryColumn,
	)

	rows, err := r.db.QueryContext(ctx, query, owner.JournalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", st.Table, err)
	}
	defer rows.Close()

	table := Table{}
	for rows.Next() {
		row := NewRow(Key{})
		values := make([]float64, len(fields))
		var latestCheck sql.NullString

		dest := make([]interface{}, 0, len(fields)+4)
		dest = append(dest, &row.ID, &row.CategoryID, &row.Year)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &latestCheck)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", st.Table, err)
		}

		for i, f := range fields {
			row.Values[f] = values[i]
		}
		if latestCheck.Valid {
			t, err := time.Parse(time.RFC3339Nano, latestCheck.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse latest_check %q: %w", latestCheck.String, err)
			}
			row.LatestCheck = &t
		}

		table = append(table, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", st.Table, err)
	}

	return table, nil
}
