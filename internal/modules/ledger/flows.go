package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homebooks/balances/internal/domain"
	"github.com/rs/zerolog"
)

var accountYear = fmt.Sprintf(yearExpr, "x.date")

// IncomeRepository reads account incomes
type IncomeRepository struct{ repository }

// NewIncomeRepository creates an income source
func NewIncomeRepository(db *sql.DB, log zerolog.Logger) *IncomeRepository {
	return &IncomeRepository{newRepository(db, log, "incomes")}
}

// Incomes sums incomes per account and year
func (r *IncomeRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM incomes x JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ?`, addIncomes)
}

// ExpenseRepository reads account expenses
type ExpenseRepository struct{ repository }

// NewExpenseRepository creates an expense source
func NewExpenseRepository(db *sql.DB, log zerolog.Logger) *ExpenseRepository {
	return &ExpenseRepository{newRepository(db, log, "expenses")}
}

// Expenses sums expenses per account and year
func (r *ExpenseRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM expenses x JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ?`, addExpenses)
}

// DebtRepository reads loans. Borrowed money enters the account; lent money leaves it.
type DebtRepository struct{ repository }

// NewDebtRepository creates a debt source
func NewDebtRepository(db *sql.DB, log zerolog.Logger) *DebtRepository {
	return &DebtRepository{newRepository(db, log, "debts")}
}

// Incomes sums borrowed amounts per account and year
func (r *DebtRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM debts x JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ? AND x.kind = 'borrow'`, addIncomes)
}

// Expenses sums lent amounts per account and year
func (r *DebtRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM debts x JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ? AND x.kind = 'lend'`, addExpenses)
}

// DebtReturnRepository reads loan repayments. A lend being repaid is an income;
// repaying a borrow is an expense.
type DebtReturnRepository struct{ repository }

// NewDebtReturnRepository creates a debt return source
func NewDebtReturnRepository(db *sql.DB, log zerolog.Logger) *DebtReturnRepository {
	return &DebtReturnRepository{newRepository(db, log, "debt_returns")}
}

// Incomes sums repayments received per account and year
func (r *DebtReturnRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM debt_returns x
		JOIN debts d ON d.id = x.debt_id
		JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ? AND d.kind = 'lend'`, addIncomes)
}

// Expenses sums repayments made per account and year
func (r *DebtReturnRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.account_id, `+accountYear+`, x.price, '0'
		FROM debt_returns x
		JOIN debts d ON d.id = x.debt_id
		JOIN accounts a ON a.id = x.account_id
		WHERE a.journal_id = ? AND d.kind = 'borrow'`, addExpenses)
}

// TransferRepository reads transfers between accounts
type TransferRepository struct{ repository }

// NewTransferRepository creates a transfer source
func NewTransferRepository(db *sql.DB, log zerolog.Logger) *TransferRepository {
	return &TransferRepository{newRepository(db, log, "transfers")}
}

// Incomes sums transfers received per destination account and year
func (r *TransferRepository) Incomes(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.to_account_id, `+accountYear+`, x.price, '0'
		FROM transfers x JOIN accounts a ON a.id = x.to_account_id
		WHERE a.journal_id = ?`, addIncomes)
}

// Expenses sums transfers sent per source account and year
func (r *TransferRepository) Expenses(ctx context.Context, owner domain.OwnerScope) ([]domain.RawEvent, error) {
	return r.sumAs(ctx, owner, `
		SELECT x.from_account_id, `+accountYear+`, x.price, '0'
		FROM transfers x JOIN accounts a ON a.id = x.from_account_id
		WHERE a.journal_id = ?`, addExpenses)
}
