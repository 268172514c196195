// Package balances recomputes per-category, per-year running balances from raw
// ledger events and reconciles them into the persisted balance tables.
package balances

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Field names a numeric column of a balance table. Values match the SQL column names.
type Field string

const (
	FieldIncomes        Field = "incomes"
	FieldExpenses       Field = "expenses"
	FieldPast           Field = "past"
	FieldBalance        Field = "balance"
	FieldHave           Field = "have"
	FieldDelta          Field = "delta"
	FieldPastAmount     Field = "past_amount"
	FieldPastFee        Field = "past_fee"
	FieldFee            Field = "fee"
	FieldPerYearIncomes Field = "per_year_incomes"
	FieldPerYearFee     Field = "per_year_fee"
	FieldSold           Field = "sold"
	FieldSoldFee        Field = "sold_fee"
	FieldInvested       Field = "invested"
	FieldMarketValue    Field = "market_value"
	FieldProfitSum      Field = "profit_sum"
	FieldProfitProc     Field = "profit_proc"
)

// Key identifies a balance row
type Key struct {
	CategoryID int64 `json:"category_id" msgpack:"c"`
	Year       int   `json:"year" msgpack:"y"`
}

// Less orders keys by category, then year
func (k Key) Less(o Key) bool {
	if k.CategoryID != o.CategoryID {
		return k.CategoryID < o.CategoryID
	}
	return k.Year < o.Year
}

// Row is one (category, year) balance record. ID is zero for computed rows
// and the storage id for persisted ones. Missing fields read as zero.
type Row struct {
	Key
	ID          int64
	Values      map[Field]float64
	LatestCheck *time.Time
}

// NewRow returns an empty row for key
func NewRow(key Key) Row {
	return Row{Key: key, Values: make(map[Field]float64)}
}

// Get returns the value of f, or 0 when unset
func (r Row) Get(f Field) float64 {
	return r.Values[f]
}

// Set assigns f
func (r *Row) Set(f Field, v float64) {
	if r.Values == nil {
		r.Values = make(map[Field]float64)
	}
	r.Values[f] = v
}

// Clone returns a deep copy of r
func (r Row) Clone() Row {
	c := Row{Key: r.Key, ID: r.ID, Values: make(map[Field]float64, len(r.Values))}
	for f, v := range r.Values {
		c.Values[f] = v
	}
	if r.LatestCheck != nil {
		t := *r.LatestCheck
		c.LatestCheck = &t
	}
	return c
}

// Table is a slice of rows. Pipeline helpers expect it sorted by key.
type Table []Row

// Sort orders the table by category, then year
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool { return t[i].Key.Less(t[j].Key) })
}

// Keys returns the row keys in table order
func (t Table) Keys() []Key {
	keys := make([]Key, len(t))
	for i, r := range t {
		keys[i] = r.Key
	}
	return keys
}

// Find returns the row stored under key
func (t Table) Find(key Key) (Row, bool) {
	for _, r := range t {
		if r.Key == key {
			return r, true
		}
	}
	return Row{}, false
}

// index maps each key to its row
func (t Table) index() map[Key]Row {
	idx := make(map[Key]Row, len(t))
	for _, r := range t {
		idx[r.Key] = r
	}
	return idx
}

// groupSumBy merges rows sharing a key by summing fields. The result is sorted.
// Fields absent from a row count as zero; every listed field is present in the output.
func groupSumBy(rows []Row, fields []Field) Table {
	sums := make(map[Key]*Row)
	for _, r := range rows {
		acc, ok := sums[r.Key]
		if !ok {
			n := NewRow(r.Key)
			for _, f := range fields {
				n.Values[f] = 0
			}
			acc = &n
			sums[r.Key] = acc
		}
		for _, f := range fields {
			acc.Values[f] += r.Get(f)
		}
	}

	out := make(Table, 0, len(sums))
	for _, r := range sums {
		out = append(out, *r)
	}
	out.Sort()
	return out
}

// groups returns the [start, end) bounds of each category run in a sorted table
func groups(t Table) [][2]int {
	if len(t) == 0 {
		return nil
	}
	var bounds [][2]int
	start := 0
	for i := 1; i <= len(t); i++ {
		if i == len(t) || t[i].CategoryID != t[start].CategoryID {
			bounds = append(bounds, [2]int{start, i})
			start = i
		}
	}
	return bounds
}

// column extracts field from every row
func column(t Table, field Field) []float64 {
	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = r.Get(field)
	}
	return out
}

// cumulativeSumPerGroup returns the running total of field, restarting at each category
func cumulativeSumPerGroup(t Table, field Field) []float64 {
	vals := column(t, field)
	out := make([]float64, len(t))
	for _, g := range groups(t) {
		floats.CumSum(out[g[0]:g[1]], vals[g[0]:g[1]])
	}
	return out
}

// shiftWithinGroup moves values down by offset rows inside each category,
// filling the vacated leading slots with fill
func shiftWithinGroup(t Table, values []float64, offset int, fill float64) []float64 {
	out := make([]float64, len(values))
	for _, g := range groups(t) {
		for i := g[0]; i < g[1]; i++ {
			src := i - offset
			if src < g[0] || src >= g[1] {
				out[i] = fill
				continue
			}
			out[i] = values[src]
		}
	}
	return out
}

// forwardFillPerGroup copies field and LatestCheck from the previous row of the
// same category into every row whose observed flag is false. Rows before the
// first observation keep zero and a nil LatestCheck.
func forwardFillPerGroup(t Table, observed []bool, field Field) {
	for _, g := range groups(t) {
		for i := g[0] + 1; i < g[1]; i++ {
			if observed[i] {
				continue
			}
			prev := t[i-1]
			t[i].Set(field, prev.Get(field))
			if prev.LatestCheck != nil {
				lc := *prev.LatestCheck
				t[i].LatestCheck = &lc
			} else {
				t[i].LatestCheck = nil
			}
		}
	}
}
