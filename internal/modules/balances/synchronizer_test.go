package balances

import (
	"context"
	"testing"
	"time"

	"github.com/homebooks/balances/internal/domain"
	testingpkg "github.com/homebooks/balances/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronizer_InsertUpdateDelete(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "balances")
	defer cleanup()

	ctx := context.Background()
	owner := domain.OwnerScope{JournalID: 1}
	p := AccountProfile{}
	repo := NewRepository(db.Conn(), zerolog.Nop())
	sync := NewSynchronizer(db.Conn(), time.UTC, 2, zerolog.Nop())

	computed := Table{
		row(1, 2000, map[Field]float64{FieldIncomes: 10, FieldBalance: 10}),
		row(1, 2001, map[Field]float64{FieldPast: 10, FieldBalance: 10}),
		row(1, 2002, map[Field]float64{FieldPast: 10, FieldBalance: 10}),
		row(2, 2001, map[Field]float64{FieldExpenses: 3, FieldBalance: -3}),
		row(2, 2002, map[Field]float64{FieldPast: -3, FieldBalance: -3}),
	}
	require.NoError(t, sync.Apply(ctx, owner, p, Diff(computed, nil, p.Fields())))

	persisted, err := repo.Load(ctx, owner, p)
	require.NoError(t, err)
	require.Equal(t, computed.Keys(), persisted.Keys(), "inserted across several batches")
	for _, r := range persisted {
		assert.NotZero(t, r.ID)
	}

	next := Table{
		row(1, 2000, map[Field]float64{FieldIncomes: 10, FieldBalance: 10}),
		row(1, 2001, map[Field]float64{FieldPast: 10, FieldExpenses: 4, FieldBalance: 6}),
		row(1, 2002, map[Field]float64{FieldPast: 6, FieldBalance: 6}),
		row(1, 2003, map[Field]float64{FieldPast: 6, FieldBalance: 6}),
	}
	cs := Diff(next, persisted, p.Fields())
	assert.Len(t, cs.Insert, 1)
	assert.Len(t, cs.Update, 2)
	assert.Len(t, cs.Delete, 2)
	require.NoError(t, sync.Apply(ctx, owner, p, cs))

	persisted, err = repo.Load(ctx, owner, p)
	require.NoError(t, err)
	require.Equal(t, next.Keys(), persisted.Keys())
	got, _ := persisted.Find(Key{1, 2001})
	assert.Equal(t, 4.0, got.Get(FieldExpenses))
	assert.Equal(t, 6.0, got.Get(FieldBalance))

	assert.True(t, Diff(next, persisted, p.Fields()).Empty())
}

func TestSynchronizer_RollsBackOnFailure(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "balances")
	defer cleanup()

	ctx := context.Background()
	owner := domain.OwnerScope{JournalID: 1}
	p := AccountProfile{}
	repo := NewRepository(db.Conn(), zerolog.Nop())
	sync := NewSynchronizer(db.Conn(), time.UTC, 0, zerolog.Nop())

	initial := Table{row(1, 2000, map[Field]float64{FieldBalance: 1}), row(1, 2001, map[Field]float64{FieldBalance: 1})}
	require.NoError(t, sync.Apply(ctx, owner, p, ChangeSet{Insert: initial}))
	before, err := repo.Load(ctx, owner, p)
	require.NoError(t, err)

	ghost := row(1, 2001, map[Field]float64{FieldBalance: 99})
	ghost.ID = 987654
	cs := ChangeSet{
		Delete: Table{before[0]},
		Insert: Table{row(5, 2000, nil)},
		Update: Table{ghost},
	}

	err = sync.Apply(ctx, owner, p, cs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "affected 0 rows")

	after, err := repo.Load(ctx, owner, p)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed apply leaves the table untouched")
}

func TestSynchronizer_DuplicateInsertFails(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "balances")
	defer cleanup()

	ctx := context.Background()
	owner := domain.OwnerScope{JournalID: 1}
	sync := NewSynchronizer(db.Conn(), time.UTC, 10, zerolog.Nop())

	cs := ChangeSet{Insert: Table{row(1, 2000, nil), row(1, 2000, nil)}}
	assert.Error(t, sync.Apply(ctx, owner, AccountProfile{}, cs))

	persisted, err := NewRepository(db.Conn(), zerolog.Nop()).Load(ctx, owner, AccountProfile{})
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestSynchronizer_LatestCheckInStorageZone(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "balances")
	defer cleanup()

	ctx := context.Background()
	owner := domain.OwnerScope{JournalID: 4}
	zone := time.FixedZone("EEST", 3*3600)
	p, err := ProfileFor(domain.ProfileSaving)
	require.NoError(t, err)

	at := time.Date(2001, 6, 1, 21, 30, 0, 0, time.UTC)
	r := row(3, 2001, map[Field]float64{FieldMarketValue: 12.5})
	r.LatestCheck = &at

	sync := NewSynchronizer(db.Conn(), zone, 10, zerolog.Nop())
	require.NoError(t, sync.Apply(ctx, owner, p, ChangeSet{Insert: Table{r}}))

	var stored string
	require.NoError(t, db.Conn().QueryRow(`SELECT latest_check FROM saving_balances WHERE journal_id = 4`).Scan(&stored))
	assert.Equal(t, "2001-06-02T00:30:00+03:00", stored)

	persisted, err := NewRepository(db.Conn(), zerolog.Nop()).Load(ctx, owner, p)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.NotNil(t, persisted[0].LatestCheck)
	assert.True(t, at.Equal(*persisted[0].LatestCheck))
	assert.Equal(t, 12.5, persisted[0].Get(FieldMarketValue))
}

func TestSynchronizer_EmptyChangeSetIsNoop(t *testing.T) {
	sync := NewSynchronizer(nil, nil, 0, zerolog.Nop())
	assert.NoError(t, sync.Apply(context.Background(), domain.OwnerScope{JournalID: 1}, AccountProfile{}, ChangeSet{}))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
