package balances

import (
	"context"

	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/rs/zerolog"
)

// affectedProfiles maps a ledger table to the balance profiles it feeds
var affectedProfiles = map[string][]domain.ProfileKind{
	"accounts":       {domain.ProfileAccount},
	"incomes":        {domain.ProfileAccount},
	"expenses":       {domain.ProfileAccount},
	"debts":          {domain.ProfileAccount},
	"debt_returns":   {domain.ProfileAccount},
	"transfers":      {domain.ProfileAccount},
	"account_worths": {domain.ProfileAccount},
	"savings":        {domain.ProfileAccount, domain.ProfileSaving},
	"saving_closes":  {domain.ProfileAccount, domain.ProfileSaving},
	"saving_types":   {domain.ProfileSaving},
	"saving_changes": {domain.ProfileSaving},
	"saving_worths":  {domain.ProfileSaving},
	"pension_types":  {domain.ProfilePension},
	"pensions":       {domain.ProfilePension},
	"pension_worths": {domain.ProfilePension},
}

// AffectedProfiles returns the profiles to recompute after source changed
func AffectedProfiles(source string) []domain.ProfileKind {
	return affectedProfiles[source]
}

// Recomputer is the part of Service the listeners need
type Recomputer interface {
	Recompute(ctx context.Context, owner domain.OwnerScope, kind domain.ProfileKind) (*SyncResult, error)
}

// RegisterListeners recomputes the affected profiles whenever a ledger record changes
func RegisterListeners(bus *events.Bus, service Recomputer, log zerolog.Logger) {
	log = log.With().Str("component", "balance_listeners").Logger()

	bus.Subscribe(events.LedgerChanged, func(event *events.Event) {
		data, ok := event.Data.(*events.LedgerChangedData)
		if !ok {
			log.Warn().Str("event_type", string(event.Type)).Msg("Unexpected event payload")
			return
		}

		owner, err := domain.NewOwnerScope(data.JournalID)
		if err != nil {
			log.Warn().Err(err).Str("source", data.Source).Msg("Ledger change without journal")
			return
		}

		kinds := AffectedProfiles(data.Source)
		if len(kinds) == 0 {
			log.Debug().Str("source", data.Source).Msg("Ledger change does not affect balances")
			return
		}

		for _, kind := range kinds {
			if _, err := service.Recompute(context.Background(), owner, kind); err != nil {
				log.Error().
					Err(err).
					Str("source", data.Source).
					Str("profile", string(kind)).
					Int64("journal_id", owner.JournalID).
					Msg("Failed to recompute balances after ledger change")
				bus.EmitError("balances", err, map[string]interface{}{
					"journal_id": owner.JournalID,
					"profile":    string(kind),
					"source":     data.Source,
				})
			}
		}
	})
}
