package balances

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/homebooks/balances/internal/database"
	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
)

// Synchronizer writes a change set to a profile's balance table in one transaction
type Synchronizer struct {
	db        *sql.DB
	location  *time.Location
	batchSize int
	log       zerolog.Logger
}

// NewSynchronizer creates a synchronizer. latest_check values are written in
// location; inserts are issued batchSize rows per statement.
func NewSynchronizer(db *sql.DB, location *time.Location, batchSize int, log zerolog.Logger) *Synchronizer {
	if location == nil {
		location = time.UTC
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Synchronizer{
		db:        db,
		location:  location,
		batchSize: batchSize,
		log:       log.With().Str("component", "balance_synchronizer").Logger(),
	}
}

// Apply deletes, inserts and updates, in that order, inside one transaction.
// Any failure rolls back the whole change set.
func (s *Synchronizer) Apply(ctx context.Context, owner domain.OwnerScope, p Profile, cs ChangeSet) error {
	if cs.Empty() {
		return nil
	}

	st := p.Storage()
	err := database.WithTransactionContext(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.deleteRows(ctx, tx, st, cs.Delete); err != nil {
			return err
		}
		if err := s.insertRows(ctx, tx, owner, st, p.Fields(), cs.Insert); err != nil {
			return err
		}
		return s.updateRows(ctx, tx, st, p.Fields(), cs.Update)
	})
	if err != nil {
		return fmt.Errorf("failed to sync %s: %w", st.Table, err)
	}

	s.log.Debug().
		Str("table", st.Table).
		Int64("journal_id", owner.JournalID).
		Int("deleted", len(cs.Delete)).
		Int("inserted", len(cs.Insert)).
		Int("updated", len(cs.Update)).
		Msg("Balance table synchronized")

	return nil
}

func (s *Synchronizer) deleteRows(ctx context.Context, tx *sql.Tx, st Storage, rows Table) error {
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		chunk := rows[start:end]

		args := make([]interface{}, len(chunk))
		for i, r := range chunk {
			args[i] = r.ID
		}

		query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`, st.Table, placeholders(len(chunk)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", st.Table, err)
		}
	}
	return nil
}

func (s *Synchronizer) insertRows(ctx context.Context, tx *sql.Tx, owner domain.OwnerScope, st Storage, fields []Field, rows Table) error {
	cols := []string{"journal_id", st.CategoryColumn, "year"}
	for _, f := range fields {
		cols = append(cols, string(f))
	}
	cols = append(cols, "latest_check")
	tuple := "(" + placeholders(len(cols)) + ")"

	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		chunk := rows[start:end]

		tuples := make([]string, len(chunk))
		args := make([]interface{}, 0, len(chunk)*len(cols))
		for i, r := range chunk {
			tuples[i] = tuple
			args = append(args, owner.JournalID, r.CategoryID, r.Year)
			for _, f := range fields {
				args = append(args, r.Get(f))
			}
			args = append(args, s.formatCheck(r.LatestCheck))
		}

		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s`, st.Table, strings.Join(cols, ", "), strings.Join(tuples, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", st.Table, err)
		}
	}
	return nil
}

func (s *Synchronizer) updateRows(ctx context.Context, tx *sql.Tx, st Storage, fields []Field, rows Table) error {
	if len(rows) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		sets = append(sets, string(f)+" = ?")
	}
	sets = append(sets, "latest_check = ?")

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, st.Table, strings.Join(sets, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare update for %s: %w", st.Table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		args := make([]interface{}, 0, len(fields)+2)
		for _, f := range fields {
			args = append(args, r.Get(f))
		}
		args = append(args, s.formatCheck(r.LatestCheck), r.ID)

		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("failed to update %s row %d: %w", st.Table, r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n != 1 {
			return fmt.Errorf("update of %s row %d affected %d rows", st.Table, r.ID, n)
		}
	}
	return nil
}

func (s *Synchronizer) formatCheck(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.In(s.location).Format(time.RFC3339Nano)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
