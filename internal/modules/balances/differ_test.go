package balances

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountFields = AccountProfile{}.Fields()

func persistedRow(id int64, key Key, balance float64) Row {
	r := row(key.CategoryID, key.Year, map[Field]float64{FieldBalance: balance})
	r.ID = id
	return r
}

// applyInMemory plays a change set against persisted the way the synchronizer does
func applyInMemory(persisted Table, cs ChangeSet) Table {
	byKey := persisted.index()
	for _, r := range cs.Delete {
		delete(byKey, r.Key)
	}
	for _, r := range cs.Insert {
		byKey[r.Key] = r
	}
	for _, r := range cs.Update {
		byKey[r.Key] = r
	}
	out := Table{}
	for _, r := range byKey {
		out = append(out, r)
	}
	out.Sort()
	return out
}

func TestDiff_EmptyPersistedInsertsAll(t *testing.T) {
	computed := Table{row(1, 2000, nil), row(1, 2001, nil)}
	cs := Diff(computed, nil, accountFields)
	assert.Len(t, cs.Insert, 2)
	assert.Empty(t, cs.Update)
	assert.Empty(t, cs.Delete)
}

func TestDiff_EmptyComputedDeletesAll(t *testing.T) {
	persisted := Table{persistedRow(10, Key{1, 2000}, 1)}
	cs := Diff(Table{}, persisted, accountFields)
	assert.Empty(t, cs.Insert)
	assert.Empty(t, cs.Update)
	require.Len(t, cs.Delete, 1)
	assert.Equal(t, int64(10), cs.Delete[0].ID)
}

func TestDiff_OrphanRowIsDeleted(t *testing.T) {
	persisted := Table{
		persistedRow(1, Key{1, 2004}, 5),
		persistedRow(2, Key{9, 2005}, 3),
	}
	computed := Table{row(1, 2004, map[Field]float64{FieldBalance: 5})}

	cs := Diff(computed, persisted, accountFields)
	assert.Empty(t, cs.Insert)
	assert.Empty(t, cs.Update)
	require.Len(t, cs.Delete, 1)
	assert.Equal(t, Key{CategoryID: 9, Year: 2005}, cs.Delete[0].Key)
}

func TestDiff_UpdateCarriesPersistedID(t *testing.T) {
	persisted := Table{persistedRow(42, Key{1, 2000}, 5)}
	computed := Table{row(1, 2000, map[Field]float64{FieldBalance: 6})}

	cs := Diff(computed, persisted, accountFields)
	require.Len(t, cs.Update, 1)
	assert.Equal(t, int64(42), cs.Update[0].ID)
	assert.Equal(t, 6.0, cs.Update[0].Get(FieldBalance))
	assert.Equal(t, int64(0), computed[0].ID, "computed input is not mutated")
}

func TestDiff_LatestCheckChangeTriggersUpdate(t *testing.T) {
	at := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	sameInstant := at.In(time.FixedZone("EET", 2*3600))

	p := persistedRow(1, Key{1, 2000}, 0)
	p.LatestCheck = &sameInstant

	unchanged := row(1, 2000, nil)
	unchanged.LatestCheck = &at
	assert.True(t, Diff(Table{unchanged}, Table{p}, accountFields).Empty(), "same instant in another zone is equal")

	cleared := row(1, 2000, nil)
	assert.Len(t, Diff(Table{cleared}, Table{p}, accountFields).Update, 1)
}

func TestDiff_CompletenessAndDisjointness(t *testing.T) {
	persisted := Table{
		persistedRow(1, Key{1, 1999}, 1),
		persistedRow(2, Key{1, 2000}, 2),
		persistedRow(3, Key{2, 2000}, 3),
	}
	computed := Table{
		row(1, 2000, map[Field]float64{FieldBalance: 2}),
		row(1, 2001, map[Field]float64{FieldBalance: 4}),
		row(2, 2000, map[Field]float64{FieldBalance: 5}),
	}

	cs := Diff(computed, persisted, accountFields)

	seen := map[Key]int{}
	for _, set := range []Table{cs.Insert, cs.Update, cs.Delete} {
		for _, k := range set.Keys() {
			seen[k]++
		}
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "key %v in more than one set", k)
	}

	applied := applyInMemory(persisted, cs)
	require.Equal(t, computed.Keys(), applied.Keys())
	for i := range computed {
		for _, f := range accountFields {
			assert.Equal(t, computed[i].Get(f), applied[i].Get(f))
		}
	}

	assert.True(t, Diff(computed, applied, accountFields).Empty(), "second diff is empty")
}
