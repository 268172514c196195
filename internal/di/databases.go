// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/homebooks/balances/internal/config"
	"github.com/homebooks/balances/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. ledger.db - raw bookkeeping events (maximum durability)
	ledgerDB, err := database.New(database.Config{
		Path:    cfg.LedgerDBPath(),
		Profile: database.ProfileLedger,
		Name:    database.NameLedger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	// 2. balances.db - derived balance tables, rebuilt from the ledger at any time
	balancesDB, err := database.New(database.Config{
		Path:    cfg.BalancesDBPath(),
		Profile: database.ProfileStandard,
		Name:    database.NameBalances,
	})
	if err != nil {
		ledgerDB.Close()
		return nil, fmt.Errorf("failed to initialize balances database: %w", err)
	}
	container.BalancesDB = balancesDB

	for _, db := range []*database.DB{ledgerDB, balancesDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().
		Str("ledger", ledgerDB.Path()).
		Str("balances", balancesDB.Path()).
		Msg("Databases initialized")

	return container, nil
}
