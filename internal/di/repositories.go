// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/homebooks/balances/internal/modules/balances"
	"github.com/homebooks/balances/internal/modules/ledger"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the ledger sources and the balance repositories
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	ledgerConn := container.LedgerDB.Conn()
	container.JournalRepo = ledger.NewJournalRepository(ledgerConn, log)
	container.AccountRepo = ledger.NewAccountRepository(ledgerConn, log)
	container.SavingTypeRepo = ledger.NewSavingTypeRepository(ledgerConn, log)
	container.PensionTypeRepo = ledger.NewPensionTypeRepository(ledgerConn, log)
	container.IncomeRepo = ledger.NewIncomeRepository(ledgerConn, log)
	container.ExpenseRepo = ledger.NewExpenseRepository(ledgerConn, log)
	container.DebtRepo = ledger.NewDebtRepository(ledgerConn, log)
	container.DebtReturnRepo = ledger.NewDebtReturnRepository(ledgerConn, log)
	container.TransferRepo = ledger.NewTransferRepository(ledgerConn, log)
	container.SavingRepo = ledger.NewSavingRepository(ledgerConn, log)
	container.SavingCloseRepo = ledger.NewSavingCloseRepository(ledgerConn, log)
	container.SavingChangeRepo = ledger.NewSavingChangeRepository(ledgerConn, log)
	container.PensionRepo = ledger.NewPensionRepository(ledgerConn, log)
	container.AccountWorthRepo = ledger.NewAccountWorthRepository(ledgerConn, log)
	container.SavingWorthRepo = ledger.NewSavingWorthRepository(ledgerConn, log)
	container.PensionWorthRepo = ledger.NewPensionWorthRepository(ledgerConn, log)

	balancesConn := container.BalancesDB.Conn()
	container.BalanceRepo = balances.NewRepository(balancesConn, log)
	container.RunRepo = balances.NewRunRepository(balancesConn, log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
