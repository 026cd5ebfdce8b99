package temporal

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
)

// ============================================================================
// SERIES ALIGNMENT
// ============================================================================
// Turns the readings of one unit into a dense hourly series: every slot between
// the first and last observation exists and no cell is left empty.
// ============================================================================

// FillStrategy defines how an empty cell is repaired
type FillStrategy string

const (
	FillForward  FillStrategy = "forward"  // carry the nearest earlier value
	FillBackward FillStrategy = "backward" // carry the nearest later value
)

// ImputationOrder is applied column by column. Backward fill only ever reaches
// the head of the series, where no earlier value exists.
var ImputationOrder = []FillStrategy{FillForward, FillBackward}

// AlignSeries re-indexes one unit's readings onto the hourly timeline spanning
// [min(timestamp), max(timestamp)] and imputes empty cells.
//
// Readings that share a timestamp are all kept at that slot in input order.
// Synthesized is the number of timeline slots that had no reading at all.
func AlignSeries(unitID string, readings []dataset.Reading) (dataset.AlignedSeries, error) {
	if len(readings) == 0 {
		return dataset.AlignedSeries{}, core.NewEmptyGroupError(unitID)
	}

	sorted := make([]dataset.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	start := sorted[0].Timestamp
	end := sorted[len(sorted)-1].Timestamp
	grid := core.HourlyGrid(start, end)

	// Bucket readings by grid offset
	buckets := make([][]dataset.Reading, len(grid))
	for _, r := range sorted {
		slot, err := slotOf(start, r.Timestamp)
		if err != nil {
			return dataset.AlignedSeries{}, fmt.Errorf("unit %q: %w", unitID, err)
		}
		buckets[slot] = append(buckets[slot], r)
	}

	out := make([]dataset.Reading, 0, len(sorted)+len(grid))
	observed := 0
	for i, slot := range grid {
		if len(buckets[i]) == 0 {
			out = append(out, dataset.Reading{Timestamp: slot, UnitID: unitID})
			continue
		}
		observed++
		for _, r := range buckets[i] {
			r.UnitID = unitID
			out = append(out, r)
		}
	}

	for _, strategy := range ImputationOrder {
		fillTarget(out, strategy)
		fillSiteName(out, strategy)
	}

	return dataset.AlignedSeries{
		UnitID:      unitID,
		Readings:    out,
		Synthesized: len(grid) - observed,
	}, nil
}

// slotOf returns the hourly offset of t from start.
func slotOf(start, t time.Time) (int, error) {
	d := t.Sub(start)
	if d%core.Hour != 0 {
		return 0, fmt.Errorf("%w: %s", core.ErrOffGridTime, core.FormatTimestamp(t))
	}
	return int(d / core.Hour), nil
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// fillTarget propagates the nearest valid target in the direction of strategy.
func fillTarget(rows []dataset.Reading, strategy FillStrategy) {
	var last sql.NullFloat64
	visit(len(rows), strategy, func(i int) {
		if rows[i].Target.Valid {
			last = rows[i].Target
		} else if last.Valid {
			rows[i].Target = last
		}
	})
}

// fillSiteName propagates the nearest non-empty site name in the direction of strategy.
func fillSiteName(rows []dataset.Reading, strategy FillStrategy) {
	last := ""
	visit(len(rows), strategy, func(i int) {
		if rows[i].SiteName != "" {
			last = rows[i].SiteName
		} else if last != "" {
			rows[i].SiteName = last
		}
	})
}

func visit(n int, strategy FillStrategy, fn func(i int)) {
	switch strategy {
	case FillBackward:
		for i := n - 1; i >= 0; i-- {
			fn(i)
		}
	default:
		for i := 0; i < n; i++ {
			fn(i)
		}
	}
}
