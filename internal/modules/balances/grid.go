package balances

import (
	"sort"
	"time"

	"github.com/homebooks/balances/internal/domain"
)

// Observation is the resolved worth snapshot of one (category, year)
type Observation struct {
	Value       float64
	LatestCheck time.Time
}

// GridInput is everything the year grid expansion needs
type GridInput struct {
	// Flows is the sparse, already grouped flow table
	Flows Table
	// Snapshots holds at most one observation per key
	Snapshots map[Key]Observation
	// Categories supplies closed years. Categories missing here are treated as open.
	Categories map[int64]domain.Category
	// SnapshotField receives the observation value (have or market_value)
	SnapshotField Field
	CurrentYear   int
}

// Horizon is the last year every open category gets a row for: one past the
// latest year seen anywhere in the input, or one past currentYear if that is later.
func Horizon(globalMaxYear, currentYear int) int {
	if currentYear > globalMaxYear {
		return currentYear + 1
	}
	return globalMaxYear + 1
}

// ExpandYearGrid turns sparse per-(category, year) data into a dense grid.
// Each category spans from its first active year through the horizon, cut at
// its closed year. Missing flow fields read as zero; the snapshot field and
// LatestCheck are forward-filled from earlier years of the same category.
func ExpandYearGrid(in GridInput) Table {
	firstYear := make(map[int64]int)
	globalMax := 0
	seen := false
	note := func(k Key) {
		if y, ok := firstYear[k.CategoryID]; !ok || k.Year < y {
			firstYear[k.CategoryID] = k.Year
		}
		if !seen || k.Year > globalMax {
			globalMax = k.Year
		}
		seen = true
	}
	for _, r := range in.Flows {
		note(r.Key)
	}
	for k := range in.Snapshots {
		note(k)
	}
	if !seen {
		return Table{}
	}

	horizon := Horizon(globalMax, in.CurrentYear)
	flows := in.Flows.index()

	categoryIDs := make([]int64, 0, len(firstYear))
	for id := range firstYear {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })

	var grid Table
	var observed []bool
	for _, id := range categoryIDs {
		last := horizon
		if c, ok := in.Categories[id]; ok && c.Closed != nil && *c.Closed < last {
			last = *c.Closed
		}

		for year := firstYear[id]; year <= last; year++ {
			key := Key{CategoryID: id, Year: year}

			row := NewRow(key)
			if r, ok := flows[key]; ok {
				row = r.Clone()
				row.ID = 0
			}
			row.LatestCheck = nil
			row.Set(in.SnapshotField, 0)

			obs, ok := in.Snapshots[key]
			if ok {
				lc := obs.LatestCheck
				row.Set(in.SnapshotField, obs.Value)
				row.LatestCheck = &lc
			}

			grid = append(grid, row)
			observed = append(observed, ok)
		}
	}

	if grid == nil {
		return Table{}
	}

	forwardFillPerGroup(grid, observed, in.SnapshotField)
	return grid
}
