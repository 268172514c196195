package testing

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// Ledger inserts raw bookkeeping rows into a migrated ledger database.
// Every helper fails the test on error and returns the new row id.
type Ledger struct {
	t  *testing.T
	db *sql.DB
}

// NewLedger wraps a ledger connection for fixture inserts
func NewLedger(t *testing.T, db *sql.DB) *Ledger {
	return &Ledger{t: t, db: db}
}

func (l *Ledger) insert(query string, args ...interface{}) int64 {
	l.t.Helper()
	res, err := l.db.Exec(query, args...)
	require.NoError(l.t, err)
	id, err := res.LastInsertId()
	require.NoError(l.t, err)
	return id
}

func closedArg(closed []int) interface{} {
	if len(closed) == 0 {
		return nil
	}
	return int64(closed[0])
}

// Journal creates an owner scope
func (l *Ledger) Journal(title string) int64 {
	return l.insert(`INSERT INTO journals (title) VALUES (?)`, title)
}

// Account creates an account; an optional closed year may follow the title
func (l *Ledger) Account(journalID int64, title string, closed ...int) int64 {
	return l.insert(`INSERT INTO accounts (journal_id, title, closed) VALUES (?, ?, ?)`, journalID, title, closedArg(closed))
}

// SavingType creates a saving type
func (l *Ledger) SavingType(journalID int64, title string, closed ...int) int64 {
	return l.insert(`INSERT INTO saving_types (journal_id, title, closed) VALUES (?, ?, ?)`, journalID, title, closedArg(closed))
}

// PensionType creates a pension type
func (l *Ledger) PensionType(journalID int64, title string, closed ...int) int64 {
	return l.insert(`INSERT INTO pension_types (journal_id, title, closed) VALUES (?, ?, ?)`, journalID, title, closedArg(closed))
}

// Income records money entering an account
func (l *Ledger) Income(accountID int64, date, price string) int64 {
	return l.insert(`INSERT INTO incomes (account_id, date, price) VALUES (?, ?, ?)`, accountID, date, price)
}

// Expense records money leaving an account
func (l *Ledger) Expense(accountID int64, date, price string) int64 {
	return l.insert(`INSERT INTO expenses (account_id, date, price) VALUES (?, ?, ?)`, accountID, date, price)
}

// Debt records a lend or borrow against an account
func (l *Ledger) Debt(accountID int64, kind, date, price string) int64 {
	return l.insert(`INSERT INTO debts (account_id, kind, date, price) VALUES (?, ?, ?, ?)`, accountID, kind, date, price)
}

// DebtReturn records a repayment of debtID through accountID
func (l *Ledger) DebtReturn(debtID, accountID int64, date, price string) int64 {
	return l.insert(`INSERT INTO debt_returns (debt_id, account_id, date, price) VALUES (?, ?, ?, ?)`, debtID, accountID, date, price)
}

// Transfer moves money between two accounts
func (l *Ledger) Transfer(fromID, toID int64, date, price string) int64 {
	return l.insert(`INSERT INTO transfers (from_account_id, to_account_id, date, price) VALUES (?, ?, ?, ?)`, fromID, toID, date, price)
}

// Saving buys into a saving type from an account
func (l *Ledger) Saving(accountID, savingTypeID int64, date, price, fee string) int64 {
	return l.insert(`INSERT INTO savings (account_id, saving_type_id, date, price, fee) VALUES (?, ?, ?, ?, ?)`, accountID, savingTypeID, date, price, fee)
}

// SavingClose sells out of a saving type into an account
func (l *Ledger) SavingClose(fromTypeID, toAccountID int64, date, price, fee string) int64 {
	return l.insert(`INSERT INTO saving_closes (from_saving_type_id, to_account_id, date, price, fee) VALUES (?, ?, ?, ?, ?)`, fromTypeID, toAccountID, date, price, fee)
}

// SavingChange moves funds between two saving types
func (l *Ledger) SavingChange(fromTypeID, toTypeID int64, date, price, fee string) int64 {
	return l.insert(`INSERT INTO saving_changes (from_saving_type_id, to_saving_type_id, date, price, fee) VALUES (?, ?, ?, ?, ?)`, fromTypeID, toTypeID, date, price, fee)
}

// Pension records a pension contribution
func (l *Ledger) Pension(pensionTypeID int64, date, price, fee string) int64 {
	return l.insert(`INSERT INTO pensions (pension_type_id, date, price, fee) VALUES (?, ?, ?, ?)`, pensionTypeID, date, price, fee)
}

// AccountWorth records an observed account balance at an RFC3339 timestamp
func (l *Ledger) AccountWorth(accountID int64, at, price string) int64 {
	return l.insert(`INSERT INTO account_worths (account_id, date, price) VALUES (?, ?, ?)`, accountID, at, price)
}

// SavingWorth records an observed market value
func (l *Ledger) SavingWorth(savingTypeID int64, at, price string) int64 {
	return l.insert(`INSERT INTO saving_worths (saving_type_id, date, price) VALUES (?, ?, ?)`, savingTypeID, at, price)
}

// PensionWorth records an observed pension value
func (l *Ledger) PensionWorth(pensionTypeID int64, at, price string) int64 {
	return l.insert(`INSERT INTO pension_worths (pension_type_id, date, price) VALUES (?, ?, ?)`, pensionTypeID, at, price)
}
