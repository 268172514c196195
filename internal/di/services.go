// Package di provides dependency injection for service implementations.
package di

import (
	"fmt"

	"github.com/homebooks/balances/internal/config"
	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/homebooks/balances/internal/modules/balances"
	"github.com/rs/zerolog"
)

// SourceConfigs returns, per profile, which ledger repositories feed which role.
// Debts, returns and transfers serve both account roles; saving changes move
// value between saving types and serve both saving roles.
func SourceConfigs(c *Container) map[domain.ProfileKind]balances.SourceConfig {
	return map[domain.ProfileKind]balances.SourceConfig{
		domain.ProfileAccount: {
			balances.RoleIncomes: {
				c.IncomeRepo, c.DebtRepo, c.DebtReturnRepo, c.TransferRepo, c.SavingCloseRepo,
			},
			balances.RoleExpenses: {
				c.ExpenseRepo, c.DebtRepo, c.DebtReturnRepo, c.TransferRepo, c.SavingRepo,
			},
			balances.RoleHave:  {c.AccountWorthRepo},
			balances.RoleTypes: {c.AccountRepo},
		},
		domain.ProfileSaving: {
			balances.RoleIncomes:  {c.SavingRepo, c.SavingChangeRepo},
			balances.RoleExpenses: {c.SavingCloseRepo, c.SavingChangeRepo},
			balances.RoleHave:     {c.SavingWorthRepo},
			balances.RoleTypes:    {c.SavingTypeRepo},
		},
		domain.ProfilePension: {
			balances.RoleIncomes: {c.PensionRepo},
			balances.RoleHave:    {c.PensionWorthRepo},
			balances.RoleTypes:   {c.PensionTypeRepo},
		},
	}
}

// InitializeServices builds the event bus and the balance pipeline, and
// subscribes the recompute listeners
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.EventBus = events.NewBus(log)

	container.Aggregators = make(map[domain.ProfileKind]*balances.Aggregator)
	for kind, sources := range SourceConfigs(container) {
		container.Aggregators[kind] = balances.NewAggregator(sources, log.With().Str("profile", string(kind)).Logger())
	}

	container.Synchronizer = balances.NewSynchronizer(
		container.BalancesDB.Conn(),
		cfg.Location(),
		cfg.InsertBatchSize,
		log,
	)

	container.BalanceService = balances.NewService(
		container.Aggregators,
		container.BalanceRepo,
		container.Synchronizer,
		container.RunRepo,
		container.JournalRepo,
		container.EventBus,
		log,
	)

	balances.RegisterListeners(container.EventBus, container.BalanceService, log)

	log.Debug().Int("profiles", len(container.Aggregators)).Msg("Services initialized")
	return nil
}
