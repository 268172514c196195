// Package ledger reads raw bookkeeping events from the ledger database and
// serves them to the balance recompute as source collaborators.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// yearExpr extracts the calendar year from an ISO date column without timezone conversion
const yearExpr = "CAST(substr(%s, 1, 4) AS INTEGER)"

// amountRow is one ledger record reduced to its category, year and money amounts
type amountRow struct {
	categoryID int64
	year       int
	price      decimal.Decimal
	fee        decimal.Decimal
}

// repository holds what every ledger source shares
type repository struct {
	db  *sql.DB
	log zerolog.Logger
}

func newRepository(db *sql.DB, log zerolog.Logger, name string) repository {
	return repository{
		db:  db,
		log: log.With().Str("repo", name).Logger(),
	}
}

// amounts runs query, which must select category id, year, price and fee in that order
func (r repository) amounts(ctx context.Context, query string, args ...interface{}) ([]amountRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	var out []amountRow
	for rows.Next() {
		var a amountRow
		if err := rows.Scan(&a.categoryID, &a.year, &a.price, &a.fee); err != nil {
			return nil, fmt.Errorf("failed to scan amount row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amount rows: %w", err)
	}
	return out, nil
}

// sumEvents sums rows per (category, year). fill adds one row's amounts to its event.
// The result is sorted by category, then year.
func sumEvents(rows []amountRow, fill func(e *domain.RawEvent, a amountRow)) []domain.RawEvent {
	type key struct {
		id   int64
		year int
	}
	sums := make(map[key]*domain.RawEvent)
	for _, a := range rows {
		k := key{a.categoryID, a.year}
		e, ok := sums[k]
		if !ok {
			e = &domain.RawEvent{CategoryID: a.categoryID, Year: a.year}
			sums[k] = e
		}
		fill(e, a)
	}

	out := make([]domain.RawEvent, 0, len(sums))
	for _, e := range sums {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// sumAs runs query for owner and sums the results with fill
func (r repository) sumAs(ctx context.Context, owner domain.OwnerScope, query string, fill func(e *domain.RawEvent, a amountRow)) ([]domain.RawEvent, error) {
	rows, err := r.amounts(ctx, query, owner.JournalID)
	if err != nil {
		return nil, err
	}
	events := sumEvents(rows, fill)
	r.log.Debug().
		Int64("journal_id", owner.JournalID).
		Int("records", len(rows)).
		Int("events", len(events)).
		Msg("Summed ledger records")
	return events, nil
}

func addIncomes(e *domain.RawEvent, a amountRow) {
	e.Incomes = e.Incomes.Add(a.price)
}

func addExpenses(e *domain.RawEvent, a amountRow) {
	e.Expenses = e.Expenses.Add(a.price)
}

func addIncomesWithFee(e *domain.RawEvent, a amountRow) {
	e.Incomes = e.Incomes.Add(a.price)
	e.Fee = e.Fee.Add(a.fee)
}

func addExpensesWithFee(e *domain.RawEvent, a amountRow) {
	e.Expenses = e.Expenses.Add(a.price)
	e.Fee = e.Fee.Add(a.fee)
}
