package balances

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id int64, year int, values map[Field]float64) Row {
	r := NewRow(Key{CategoryID: id, Year: year})
	for f, v := range values {
		r.Values[f] = v
	}
	return r
}

func TestGroupSumBy(t *testing.T) {
	rows := []Row{
		row(2, 2000, map[Field]float64{FieldIncomes: 1}),
		row(1, 2001, map[Field]float64{FieldIncomes: 2, FieldExpenses: 1}),
		row(1, 2001, map[Field]float64{FieldIncomes: 3}),
		row(1, 2000, map[Field]float64{FieldExpenses: 4}),
	}

	got := groupSumBy(rows, []Field{FieldIncomes, FieldExpenses})
	require.Len(t, got, 3)

	assert.Equal(t, []Key{{1, 2000}, {1, 2001}, {2, 2000}}, got.Keys())
	assert.Equal(t, 0.0, got[0].Get(FieldIncomes))
	assert.Equal(t, 4.0, got[0].Get(FieldExpenses))
	assert.Equal(t, 5.0, got[1].Get(FieldIncomes))
	assert.Equal(t, 1.0, got[1].Get(FieldExpenses))
	assert.Contains(t, got[2].Values, FieldExpenses, "every listed field is materialized")
}

func TestGroupSumBy_Empty(t *testing.T) {
	assert.Empty(t, groupSumBy(nil, []Field{FieldIncomes}))
}

func TestCumulativeAndShiftPerGroup(t *testing.T) {
	tbl := Table{
		row(1, 2000, map[Field]float64{FieldIncomes: 1}),
		row(1, 2001, map[Field]float64{FieldIncomes: 2}),
		row(1, 2002, map[Field]float64{FieldIncomes: 3}),
		row(2, 2001, map[Field]float64{FieldIncomes: 10}),
		row(2, 2002, map[Field]float64{FieldIncomes: 20}),
	}

	cum := cumulativeSumPerGroup(tbl, FieldIncomes)
	assert.Equal(t, []float64{1, 3, 6, 10, 30}, cum, "running totals restart per category")

	shifted := shiftWithinGroup(tbl, cum, 1, 0)
	assert.Equal(t, []float64{0, 1, 3, 0, 10}, shifted, "shift never crosses categories")

	assert.Equal(t, []float64{-1, -1, -1, -1, -1}, shiftWithinGroup(tbl, cum, 5, -1))
}

func TestForwardFillPerGroup(t *testing.T) {
	at := time.Date(1999, 5, 1, 0, 0, 0, 0, time.UTC)
	tbl := Table{
		row(1, 1998, nil),
		row(1, 1999, map[Field]float64{FieldHave: 10}),
		row(1, 2000, nil),
		row(1, 2001, nil),
		row(2, 2000, nil),
	}
	tbl[1].LatestCheck = &at

	forwardFillPerGroup(tbl, []bool{false, true, false, false, false}, FieldHave)

	assert.Equal(t, 0.0, tbl[0].Get(FieldHave))
	assert.Nil(t, tbl[0].LatestCheck)
	for _, i := range []int{2, 3} {
		assert.Equal(t, 10.0, tbl[i].Get(FieldHave))
		require.NotNil(t, tbl[i].LatestCheck)
		assert.True(t, at.Equal(*tbl[i].LatestCheck))
	}
	assert.Equal(t, 0.0, tbl[4].Get(FieldHave), "fill never crosses categories")
	assert.Nil(t, tbl[4].LatestCheck)
}

func TestRowClone(t *testing.T) {
	at := time.Now()
	r := row(1, 2000, map[Field]float64{FieldHave: 1})
	r.LatestCheck = &at

	c := r.Clone()
	c.Set(FieldHave, 2)
	later := at.Add(time.Hour)
	c.LatestCheck = &later

	assert.Equal(t, 1.0, r.Get(FieldHave))
	assert.True(t, at.Equal(*r.LatestCheck))
}
