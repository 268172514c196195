package balances

import (
	"sort"

	"github.com/homebooks/balances/internal/domain"
	"github.com/shopspring/decimal"
)

// Project computes the full balance table of one profile from aggregated
// source data. It is a pure function of its inputs; currentYear stands in for
// the clock. Empty input yields an empty table.
func Project(p Profile, data *Aggregated, currentYear int) Table {
	if data == nil {
		return Table{}
	}

	categories := make(map[int64]domain.Category, len(data.Types))
	for _, c := range data.Types {
		categories[c.ID] = c
	}

	grid := ExpandYearGrid(GridInput{
		Flows:         normalize(p, data),
		Snapshots:     latestSnapshots(data.Have),
		Categories:    categories,
		SnapshotField: p.SnapshotField(),
		CurrentYear:   currentYear,
	})

	p.Accumulate(grid)
	return grid
}

// normalize renames raw amounts into table fields per the profile's field map
// and sums them per (category, year)
func normalize(p Profile, data *Aggregated) Table {
	fieldMap := p.FieldMap()

	var rows []Row
	fieldSet := make(map[Field]struct{})
	add := func(role Role, events []domain.RawEvent) {
		mapping := fieldMap[role]
		if len(mapping) == 0 {
			return
		}
		for _, f := range mapping {
			fieldSet[f] = struct{}{}
		}
		for _, e := range events {
			row := NewRow(Key{CategoryID: e.CategoryID, Year: e.Year})
			for raw, f := range mapping {
				row.Values[f] += rawAmount(e, raw).InexactFloat64()
			}
			rows = append(rows, row)
		}
	}
	add(RoleIncomes, data.Incomes)
	add(RoleExpenses, data.Expenses)

	fields := make([]Field, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	return groupSumBy(rows, fields)
}

func rawAmount(e domain.RawEvent, f RawField) decimal.Decimal {
	switch f {
	case RawIncomes:
		return e.Incomes
	case RawExpenses:
		return e.Expenses
	case RawFee:
		return e.Fee
	}
	return decimal.Zero
}

// latestSnapshots keeps the snapshot with the latest LatestCheck per key.
// On equal timestamps the later snapshot in input order wins.
func latestSnapshots(snaps []domain.Snapshot) map[Key]Observation {
	out := make(map[Key]Observation, len(snaps))
	for _, s := range snaps {
		key := Key{CategoryID: s.CategoryID, Year: s.Year}
		if cur, ok := out[key]; ok && cur.LatestCheck.After(s.LatestCheck) {
			continue
		}
		out[key] = Observation{Value: s.Have.InexactFloat64(), LatestCheck: s.LatestCheck}
	}
	return out
}
