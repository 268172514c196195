package ledger

import (
	"context"
	"database/sql"

	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
)

// SavingRepository reads purchases of savings. For accounts a purchase is an
// expense of the paying account; for saving types it is an income with its fee.
type SavingRepository struct{ repository }

// NewSavingRepository creates a saving purchase source
func NewSavingRepository(db *sql.DB, log zerolog.Logger) *SavingRepository {
	return &SavingRepository{newRepository(db, log, "savings")}
}

// Incomes sums purchase price and fee per saving type and year
func (r *SavingRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.saving_type_id, `+accountYear+`, x.price, x.fee
		FROM savings x JOIN saving_types s ON s.id = x.saving_type_id
		WHERE s.journal_id = ?`, addIncomesWithFee)
}

// Expenses sums purchase price per paying account and year
func (r *SavingRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM savings x JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ?`, addExpenses)
}

// SavingCloseRepository reads sales of savings. The receiving account gets an
// income; the saving type records a sale with its fee.
type SavingCloseRepository struct{ repository }

// NewSavingCloseRepository creates a saving sale source
func NewSavingCloseRepository(db *sql.DB, log zerolog.Logger) *SavingCloseRepository {
	return &SavingCloseRepository{newRepository(db, log, "saving_closes")}
}

// Incomes sums sale proceeds per receiving account and year
func (r *SavingCloseRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.to_account_id, `+accountYear+`, x.price, '0'
		FROM saving_closes x JOIN accounts a ON a.id = x.to_account_id
		WHERE a.journal_id = ?`, addIncomes)
}

// Expenses sums sold amount and sale fee per saving type and year
func (r *SavingCloseRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.from_saving_type_id, `+accountYear+`, x.price, x.fee
		FROM saving_closes x JOIN saving_types s ON s.id = x.from_saving_type_id
		WHERE s.journal_id = ?`, addExpensesWithFee)
}

// SavingChangeRepository reads moves between saving types. The fee is charged
// to the type the money leaves.
type SavingChangeRepository struct{ repository }

// NewSavingChangeRepository creates a saving change source
func NewSavingChangeRepository(db *sql.DB, log zerolog.Logger) *SavingChangeRepository {
	return &SavingChangeRepository{newRepository(db, log, "saving_changes")}
}

// Incomes sums amounts received per destination saving type and year
func (r *SavingChangeRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.to_saving_type_id, `+accountYear+`, x.price, '0'
		FROM saving_changes x JOIN saving_types s ON s.id = x.to_saving_type_id
		WHERE s.journal_id = ?`, addIncomes)
}

// Expenses sums amounts and fees leaving each source saving type per year
func (r *SavingChangeRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.from_saving_type_id, `+accountYear+`, x.price, x.fee
		FROM saving_changes x JOIN saving_types s ON s.id = x.from_saving_type_id
		WHERE s.journal_id = ?`, addExpensesWithFee)
}

// PensionRepository reads pension contributions
type PensionRepository struct{ repository }

// NewPensionRepository creates a pension contribution source
func NewPensionRepository(db *sql.DB, log zerolog.Logger) *PensionRepository {
	return &PensionRepository{newRepository(db, log, "pensions")}
}

// Incomes sums contributions and fees per pension type and year
func (r *PensionRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.pension_type_id, `+accountYear+`, x.price, x.fee
		FROM pensions x JOIN pension_types p ON p.id = x.pension_type_id
		WHERE p.journal_id = ?`, addIncomesWithFee)
}
