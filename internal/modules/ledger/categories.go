package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
)

// CategoryRepository reads one category registry (accounts, saving or pension types)
type CategoryRepository struct {
	repository
	table string
}

// NewAccountRepository reads the accounts registry
func NewAccountRepository(db *sql.DB, log zerolog.Logger) *CategoryRepository {
	return &CategoryRepository{repository: newRepository(db, log, "accounts"), table: "accounts"}
}

// NewSavingTypeRepository reads the saving_types registry
func NewSavingTypeRepository(db *sql.DB, log zerolog.Logger) *CategoryRepository {
	return &CategoryRepository{repository: newRepository(db, log, "saving_types"), table: "saving_types"}
}

// NewPensionTypeRepository reads the pension_types registry
func NewPensionTypeRepository(db *sql.DB, log zerolog.Logger) *CategoryRepository {
	return &CategoryRepository{repository: newRepository(db, log, "pension_types"), table: "pension_types"}
}

// Related returns every category of owner, ordered by id
func (r *CategoryRepository) Related(ctx context.Context, owner domain.OwnerScope) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, title, closed FROM %s WHERE journal_id = ? ORDER BY id`, r.table),
		owner.JournalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var (
			c      domain.Category
			closed sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Title, &closed); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		if closed.Valid {
			year := int(closed.Int64)
			c.Closed = &year
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", r.table, err)
	}

	return out, nil
}

// Journal is an owner scope with its display title
type Journal struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// JournalRepository lists owner scopes
type JournalRepository struct{ repository }

// NewJournalRepository creates a journal repository
func NewJournalRepository(db *sql.DB, log zerolog.Logger) *JournalRepository {
	return &JournalRepository{newRepository(db, log, "journals")}
}

// List returns every journal ordered by id
func (r *JournalRepository) List(ctx context.Context) ([]Journal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM journals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	out := []Journal{}
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.ID, &j.Title); err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journals: %w", err)
	}
	return out, nil
}

// Owners returns the owner scope of every journal
func (r *JournalRepository) Owners(ctx context.Context) ([]domain.OwnerScope, error) {
	journals, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	owners := make([]domain.OwnerScope, len(journals))
	for i, j := range journals {
		owners[i] = domain.OwnerScope{JournalID: j.ID}
	}
	return owners, nil
}
