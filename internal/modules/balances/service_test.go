package balances

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/homebooks/balances/internal/database"
	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/homebooks/balances/internal/modules/ledger"
	testingpkg "github.com/homebooks/balances/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.EventData
}

func (e *recordingEmitter) Emit(module string, data events.EventData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, data)
}

type failingApplier struct{ err error }

func (f failingApplier) Apply(ctx context.Context, owner domain.OwnerScope, p Profile, cs ChangeSet) error {
	return f.err
}

type staticOwners []domain.OwnerScope

func (o staticOwners) Owners(ctx context.Context) ([]domain.OwnerScope, error) {
	return o, nil
}

type serviceFixture struct {
	ledgerDB   *database.DB
	balancesDB *database.DB
	ledger     *testingpkg.Ledger
	service    *Service
	runs       *RunRepository
	emitter    *recordingEmitter
}

func accountSources(db *database.DB) SourceConfig {
	conn, log := db.Conn(), zerolog.Nop()
	return SourceConfig{
		RoleIncomes:  {ledger.NewIncomeRepository(conn, log), ledger.NewTransferRepository(conn, log)},
		RoleExpenses: {ledger.NewExpenseRepository(conn, log), ledger.NewTransferRepository(conn, log)},
		RoleHave:     {ledger.NewAccountWorthRepository(conn, log)},
		RoleTypes:    {ledger.NewAccountRepository(conn, log)},
	}
}

func newServiceFixture(t *testing.T, applier ChangeApplier) *serviceFixture {
	t.Helper()

	ledgerDB, cleanupLedger := testingpkg.NewTestDB(t, "ledger")
	t.Cleanup(cleanupLedger)
	balancesDB, cleanupBalances := testingpkg.NewTestDB(t, "balances")
	t.Cleanup(cleanupBalances)

	log := zerolog.Nop()
	if applier == nil {
		applier = NewSynchronizer(balancesDB.Conn(), time.UTC, 50, log)
	}

	f := &serviceFixture{
		ledgerDB:   ledgerDB,
		balancesDB: balancesDB,
		ledger:     testingpkg.NewLedger(t, ledgerDB.Conn()),
		runs:       NewRunRepository(balancesDB.Conn(), log),
		emitter:    &recordingEmitter{},
	}
	f.service = NewService(
		map[domain.ProfileKind]*Aggregator{
			domain.ProfileAccount: NewAggregator(accountSources(ledgerDB), log),
		},
		NewRepository(balancesDB.Conn(), log),
		applier,
		f.runs,
		ledger.NewJournalRepository(ledgerDB.Conn(), log),
		f.emitter,
		log,
	)
	f.service.SetClock(func() time.Time { return time.Date(2002, 6, 1, 12, 0, 0, 0, time.UTC) })
	return f
}

func (f *serviceFixture) persisted(t *testing.T, journalID int64) Table {
	t.Helper()
	table, err := NewRepository(f.balancesDB.Conn(), zerolog.Nop()).Load(context.Background(), domain.OwnerScope{JournalID: journalID}, AccountProfile{})
	require.NoError(t, err)
	return table
}

func TestService_RecomputeEndToEnd(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	j := f.ledger.Journal("home")
	acc := f.ledger.Account(j, "cash")
	f.ledger.Income(acc, "2000-03-01", "100")
	f.ledger.Expense(acc, "2001-04-01", "30")
	f.ledger.AccountWorth(acc, "2001-06-01", "80")

	owner := domain.OwnerScope{JournalID: j}
	result, err := f.service.Recompute(ctx, owner, domain.ProfileAccount)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows, "2000 through horizon 2003")
	assert.Equal(t, 4, result.Inserted)
	assert.NotEmpty(t, result.RunID)

	table := f.persisted(t, j)
	require.Len(t, table, 4)
	r2002, _ := table.Find(Key{acc, 2002})
	assert.Equal(t, 70.0, r2002.Get(FieldBalance))
	assert.Equal(t, 80.0, r2002.Get(FieldHave))
	assert.Equal(t, 10.0, r2002.Get(FieldDelta))
	require.NotNil(t, r2002.LatestCheck)

	again, err := f.service.Recompute(ctx, owner, domain.ProfileAccount)
	require.NoError(t, err)
	assert.Zero(t, again.Inserted)
	assert.Zero(t, again.Updated)
	assert.Zero(t, again.Deleted)

	f.ledger.Expense(acc, "2002-02-01", "10")
	third, err := f.service.Recompute(ctx, owner, domain.ProfileAccount)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Updated, "2002 and the carried 2003 row change")
	assert.Zero(t, third.Inserted)

	runs, err := f.runs.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, run := range runs {
		assert.Equal(t, RunSuccess, run.Status)
	}

	require.Len(t, f.emitter.events, 3)
	synced, ok := f.emitter.events[0].(*events.BalancesSyncedData)
	require.True(t, ok)
	assert.Equal(t, result.RunID, synced.RunID)
	assert.Equal(t, 4, synced.Inserted)
}

func TestService_OwnersAreIsolated(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	j1 := f.ledger.Journal("one")
	j2 := f.ledger.Journal("two")
	a1 := f.ledger.Account(j1, "a")
	a2 := f.ledger.Account(j2, "b")
	f.ledger.Income(a1, "2001-01-01", "5")
	f.ledger.Income(a2, "2001-01-01", "7")

	_, err := f.service.Recompute(ctx, domain.OwnerScope{JournalID: j1}, domain.ProfileAccount)
	require.NoError(t, err)
	_, err = f.service.Recompute(ctx, domain.OwnerScope{JournalID: j2}, domain.ProfileAccount)
	require.NoError(t, err)

	for _, r := range f.persisted(t, j1) {
		assert.Equal(t, a1, r.CategoryID)
	}

	f.ledger.Income(a1, "2001-05-01", "1")
	res, err := f.service.Recompute(ctx, domain.OwnerScope{JournalID: j1}, domain.ProfileAccount)
	require.NoError(t, err)
	assert.Zero(t, res.Deleted, "rows of another journal are never deleted")
	assert.Len(t, f.persisted(t, j2), 3)
}

func TestService_FailedApplyIsJournaled(t *testing.T) {
	boom := errors.New("disk full")
	f := newServiceFixture(t, failingApplier{err: boom})

	j := f.ledger.Journal("home")
	acc := f.ledger.Account(j, "cash")
	f.ledger.Income(acc, "2001-01-01", "1")

	_, err := f.service.Recompute(context.Background(), domain.OwnerScope{JournalID: j}, domain.ProfileAccount)
	require.ErrorIs(t, err, boom)

	assert.Empty(t, f.persisted(t, j))
	assert.Empty(t, f.emitter.events, "nothing is announced for a failed run")

	runs, err := f.runs.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "disk full")
}

type failingRecorder struct{ err error }

func (f failingRecorder) Record(ctx context.Context, run *SyncRun) error {
	return f.err
}

func TestService_RunJournalFailureIsLoggedNotReturned(t *testing.T) {
	f := newServiceFixture(t, nil)

	var buf bytes.Buffer
	f.service.runs = failingRecorder{err: errors.New("journal locked")}
	f.service.log = zerolog.New(&buf)

	j := f.ledger.Journal("home")
	acc := f.ledger.Account(j, "cash")
	f.ledger.Income(acc, "2001-01-01", "4")

	res, err := f.service.Recompute(context.Background(), domain.OwnerScope{JournalID: j}, domain.ProfileAccount)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Len(t, f.persisted(t, j), 3)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "Failed to record sync run")
	assert.Contains(t, out, "journal locked")
	assert.Contains(t, out, `"journal_id":`)
}

func TestService_RejectsBadInput(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Recompute(ctx, domain.OwnerScope{}, domain.ProfileAccount)
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = f.service.Recompute(ctx, domain.OwnerScope{JournalID: 1}, domain.ProfileKind("bond"))
	assert.ErrorIs(t, err, domain.ErrUnknownProfile)

	_, err = f.service.Recompute(ctx, domain.OwnerScope{JournalID: 1}, domain.ProfileSaving)
	assert.ErrorIs(t, err, domain.ErrUnknownProfile, "profile without configured sources")
}

func TestService_ConcurrentRecomputesSerialize(t *testing.T) {
	f := newServiceFixture(t, nil)

	j := f.ledger.Journal("home")
	acc := f.ledger.Account(j, "cash")
	f.ledger.Income(acc, "2000-01-01", "10")
	owner := domain.OwnerScope{JournalID: j}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		failures []error
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.service.Recompute(context.Background(), owner, domain.ProfileAccount)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			inserted += res.Inserted
		}()
	}
	wg.Wait()

	assert.Empty(t, failures)
	assert.Equal(t, 4, inserted, "each row is inserted exactly once")
	assert.Len(t, f.persisted(t, j), 4)
}

func TestService_RecomputeAll(t *testing.T) {
	f := newServiceFixture(t, nil)

	j1 := f.ledger.Journal("one")
	j2 := f.ledger.Journal("two")
	f.ledger.Income(f.ledger.Account(j1, "a"), "2002-01-01", "1")
	f.ledger.Income(f.ledger.Account(j2, "b"), "2002-01-01", "2")

	err := f.service.RecomputeAll(context.Background())
	require.Error(t, err, "saving and pension have no sources in this fixture")
	assert.ErrorIs(t, err, domain.ErrUnknownProfile)

	assert.Len(t, f.persisted(t, j1), 2)
	assert.Len(t, f.persisted(t, j2), 2)
}

func TestService_RecomputeAllStopsOnCancel(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.service.owners = staticOwners{{JournalID: 1}, {JournalID: 2}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.service.RecomputeAll(ctx), context.Canceled)
}
