package balances

import (
	"context"
	"fmt"

	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/pkg/logger"
	"github.com/rs/zerolog"
)

// SourceConfig lists, per role, the collaborators to pull from. A collaborator
// that does not implement the role's interface is skipped.
type SourceConfig map[Role][]interface{}

// Aggregated is the concatenated, not yet summed, output of all sources
type Aggregated struct {
	Incomes  []domain.RawEvent
	Expenses []domain.RawEvent
	Have     []domain.Snapshot
	Types    []domain.Category
}

// Aggregator pulls raw events for one profile from its configured sources
type Aggregator struct {
	config SourceConfig
	log    zerolog.Logger
}

// NewAggregator creates an aggregator over config
func NewAggregator(config SourceConfig, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		config: config,
		log:    log.With().Str("component", "balance_aggregator").Logger(),
	}
}

// Aggregate calls every configured source for owner and concatenates the results per role
func (a *Aggregator) Aggregate(ctx context.Context, owner domain.OwnerScope) (*Aggregated, error) {
	out := &Aggregated{}

	for _, src := range a.config[RoleIncomes] {
		s, ok := src.(domain.IncomeSource)
		if !ok {
			a.skip(ctx, RoleIncomes, src)
			continue
		}
		events, err := s.Incomes(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to read incomes from %T: %w", src, err)
		}
		out.Incomes = append(out.Incomes, events...)
	}

	for _, src := range a.config[RoleExpenses] {
		s, ok := src.(domain.ExpenseSource)
		if !ok {
			a.skip(ctx, RoleExpenses, src)
			continue
		}
		events, err := s.Expenses(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to read expenses from %T: %w", src, err)
		}
		out.Expenses = append(out.Expenses, events...)
	}

	for _, src := range a.config[RoleHave] {
		s, ok := src.(domain.SnapshotSource)
		if !ok {
			a.skip(ctx, RoleHave, src)
			continue
		}
		snaps, err := s.Have(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshots from %T: %w", src, err)
		}
		out.Have = append(out.Have, snaps...)
	}

	for _, src := range a.config[RoleTypes] {
		s, ok := src.(domain.CategorySource)
		if !ok {
			a.skip(ctx, RoleTypes, src)
			continue
		}
		cats, err := s.Related(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to read categories from %T: %w", src, err)
		}
		out.Types = append(out.Types, cats...)
	}

	log := logger.FromContext(ctx, a.log)
	log.Debug().
		Int64("journal_id", owner.JournalID).
		Int("incomes", len(out.Incomes)).
		Int("expenses", len(out.Expenses)).
		Int("have", len(out.Have)).
		Int("types", len(out.Types)).
		Msg("Aggregated ledger events")

	return out, nil
}

func (a *Aggregator) skip(ctx context.Context, role Role, src interface{}) {
	log := logger.FromContext(ctx, a.log)
	log.Debug().
		Str("role", string(role)).
		Str("source", fmt.Sprintf("%T", src)).
		Msg("Source does not serve role, skipping")
}
