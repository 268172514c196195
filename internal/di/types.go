/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server and scheduler for access to services.
 */
package di

import (
	"github.com/homebooks/balances/internal/database"
	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/homebooks/balances/internal/modules/balances"
	"github.com/homebooks/balances/internal/modules/ledger"
	"github.com/homebooks/balances/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	LedgerDB   *database.DB // raw bookkeeping events, read only here
	BalancesDB *database.DB // derived balance tables and sync journal

	// Ledger repositories (balance sources)
	JournalRepo      *ledger.JournalRepository
	AccountRepo      *ledger.CategoryRepository
	SavingTypeRepo   *ledger.CategoryRepository
	PensionTypeRepo  *ledger.CategoryRepository
	IncomeRepo       *ledger.IncomeRepository
	ExpenseRepo      *ledger.ExpenseRepository
	DebtRepo         *ledger.DebtRepository
	DebtReturnRepo   *ledger.DebtReturnRepository
	TransferRepo     *ledger.TransferRepository
	SavingRepo       *ledger.SavingRepository
	SavingCloseRepo  *ledger.SavingCloseRepository
	SavingChangeRepo *ledger.SavingChangeRepository
	PensionRepo      *ledger.PensionRepository
	AccountWorthRepo *ledger.WorthRepository
	SavingWorthRepo  *ledger.WorthRepository
	PensionWorthRepo *ledger.WorthRepository

	// Balance repositories
	BalanceRepo *balances.Repository
	RunRepo     *balances.RunRepository

	// Services
	EventBus       *events.Bus
	Aggregators    map[domain.ProfileKind]*balances.Aggregator
	Synchronizer   *balances.Synchronizer
	BalanceService *balances.Service
}

// JobInstances holds the scheduled jobs for manual triggering
type JobInstances struct {
	RecomputeBalances  *balances.RecomputeAllJob
	CheckWALCheckpoint *scheduler.CheckWALCheckpointsJob
	CheckDatabases     *scheduler.CheckDatabasesJob
}

// Close closes every open database
func (c *Container) Close() {
	if c.BalancesDB != nil {
		c.BalancesDB.Close()
	}
	if c.LedgerDB != nil {
		c.LedgerDB.Close()
	}
}
