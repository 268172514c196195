package balances

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/homebooks/balances/pkg/logger"
	"github.com/rs/zerolog"
)

// BalanceStore reads persisted balance rows
type BalanceStore interface {
	Load(ctx context.Context, owner domain.OwnerScope, p Profile) (Table, error)
}

// ChangeApplier writes a change set atomically
type ChangeApplier interface {
	Apply(ctx context.Context, owner domain.OwnerScope, p Profile, cs ChangeSet) error
}

// RunRecorder stores the journal of recomputes
type RunRecorder interface {
	Record(ctx context.Context, run *SyncRun) error
}

// OwnerLister enumerates every owner scope
type OwnerLister interface {
	Owners(ctx context.Context) ([]domain.OwnerScope, error)
}

// EventEmitter publishes domain events
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// SyncResult reports what one recompute wrote
type SyncResult struct {
	RunID     string             `json:"run_id"`
	JournalID int64              `json:"journal_id"`
	Profile   domain.ProfileKind `json:"profile"`
	Rows      int                `json:"rows"`
	Inserted  int                `json:"inserted"`
	Updated   int                `json:"updated"`
	Deleted   int                `json:"deleted"`
}

// Service runs the aggregate, project, diff and synchronize pipeline.
// Recomputes of the same (owner, profile) never interleave.
type Service struct {
	sources map[domain.ProfileKind]*Aggregator
	store   BalanceStore
	applier ChangeApplier
	runs    RunRecorder
	owners  OwnerLister
	emitter EventEmitter
	now     func() time.Time
	log     zerolog.Logger

	mu    sync.Mutex
	locks map[scopeKey]*sync.Mutex
}

type scopeKey struct {
	journalID int64
	kind      domain.ProfileKind
}

// NewService wires the pipeline. emitter may be nil.
func NewService(
	sources map[domain.ProfileKind]*Aggregator,
	store BalanceStore,
	applier ChangeApplier,
	runs RunRecorder,
	owners OwnerLister,
	emitter EventEmitter,
	log zerolog.Logger,
) *Service {
	return &Service{
		sources: sources,
		store:   store,
		applier: applier,
		runs:    runs,
		owners:  owners,
		emitter: emitter,
		now:     time.Now,
		log:     log.With().Str("service", "balances").Logger(),
		locks:   make(map[scopeKey]*sync.Mutex),
	}
}

// SetClock replaces the time source used for the current year and run timestamps
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) lock(owner domain.OwnerScope, kind domain.ProfileKind) func() {
	key := scopeKey{journalID: owner.JournalID, kind: kind}

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Recompute rebuilds the balance table of kind for owner and reconciles it
// with storage. On failure the persisted table is left untouched.
func (s *Service) Recompute(ctx context.Context, owner domain.OwnerScope, kind domain.ProfileKind) (*SyncResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	profile, err := ProfileFor(kind)
	if err != nil {
		return nil, err
	}
	aggregator, ok := s.sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no sources configured for %q", domain.ErrUnknownProfile, string(kind))
	}

	result, err := s.recomputeLocked(ctx, owner, profile, aggregator)
	if err != nil {
		return nil, err
	}

	if s.emitter != nil {
		s.emitter.Emit("balances", &events.BalancesSyncedData{
			RunID:     result.RunID,
			JournalID: owner.JournalID,
			Profile:   string(kind),
			Inserted:  result.Inserted,
			Updated:   result.Updated,
			Deleted:   result.Deleted,
		})
	}

	return result, nil
}

// recomputeLocked holds the scope lock for the read-diff-write cycle and journals the run
func (s *Service) recomputeLocked(ctx context.Context, owner domain.OwnerScope, profile Profile, aggregator *Aggregator) (*SyncResult, error) {
	kind := profile.Kind()
	unlock := s.lock(owner, kind)
	defer unlock()

	run := &SyncRun{
		ID:        NewRunID(),
		JournalID: owner.JournalID,
		Profile:   kind,
		StartedAt: s.now(),
	}
	log := s.log.With().
		Str("run_id", run.ID).
		Int64("journal_id", owner.JournalID).
		Str("profile", string(kind)).
		Logger()
	ctx = logger.WithContext(ctx, log)

	result, cs, err := s.reconcile(ctx, owner, profile, aggregator)
	run.FinishedAt = s.now()
	if err != nil {
		run.Status = RunFailed
		run.Error = err.Error()
		s.record(ctx, run)
		log.Error().Err(err).Msg("Balance recompute failed")
		return nil, err
	}

	run.Status = RunSuccess
	run.Inserted = len(cs.Insert)
	run.Updated = len(cs.Update)
	run.Deleted = len(cs.Delete)
	run.Changes = Summarize(cs)
	s.record(ctx, run)

	result.RunID = run.ID
	log.Info().
		Int("rows", result.Rows).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("Balances recomputed")

	return result, nil
}

func (s *Service) reconcile(ctx context.Context, owner domain.OwnerScope, profile Profile, aggregator *Aggregator) (*SyncResult, ChangeSet, error) {
	data, err := aggregator.Aggregate(ctx, owner)
	if err != nil {
		return nil, ChangeSet{}, fmt.Errorf("failed to aggregate %s events: %w", profile.Kind(), err)
	}

	computed := Project(profile, data, s.now().Year())

	persisted, err := s.store.Load(ctx, owner, profile)
	if err != nil {
		return nil, ChangeSet{}, fmt.Errorf("failed to load persisted %s balances: %w", profile.Kind(), err)
	}

	cs := Diff(computed, persisted, profile.Fields())
	if err := s.applier.Apply(ctx, owner, profile, cs); err != nil {
		return nil, ChangeSet{}, err
	}

	return &SyncResult{
		JournalID: owner.JournalID,
		Profile:   profile.Kind(),
		Rows:      len(computed),
		Inserted:  len(cs.Insert),
		Updated:   len(cs.Update),
		Deleted:   len(cs.Delete),
	}, cs, nil
}

// record stores run; a journal write failure is logged and never masks the recompute outcome
func (s *Service) record(ctx context.Context, run *SyncRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(ctx, run); err != nil {
		log := logger.FromContext(ctx, s.log)
		log.Warn().Err(err).Msg("Failed to record sync run")
	}
}

// RecomputeAll recomputes every profile of every owner. It keeps going past
// failures and returns them joined.
func (s *Service) RecomputeAll(ctx context.Context) error {
	owners, err := s.owners.Owners(ctx)
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	var errs []error
	for _, owner := range owners {
		for _, kind := range domain.AllProfileKinds() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := s.Recompute(ctx, owner, kind); err != nil {
				errs = append(errs, fmt.Errorf("journal %d %s: %w", owner.JournalID, kind, err))
			}
		}
	}

	s.log.Info().
		Int("owners", len(owners)).
		Int("failures", len(errs)).
		Msg("Full balance recompute finished")

	return errors.Join(errs...)
}
