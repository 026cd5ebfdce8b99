package temporal

import (
	"fmt"
	"time"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
)

// ============================================================================
// LABEL SYNTHESIS
// ============================================================================
// For a horizon of d days the label of the row at t is the target observed at
// t + 24*d hours in the same series. Rows that cannot see that far ahead are
// dropped, so every emitted record carries a complete label set.
// ============================================================================

// DefaultHorizons are the forecast horizons in days.
var DefaultHorizons = []int{1, 7}

// ValidateHorizons requires at least one horizon, all positive and distinct.
func ValidateHorizons(horizons []int) error {
	if len(horizons) == 0 {
		return fmt.Errorf("%w: at least one horizon is required", core.ErrInvalidHorizon)
	}
	seen := make(map[int]bool, len(horizons))
	for _, d := range horizons {
		if d <= 0 {
			return fmt.Errorf("%w: %d (must be a positive number of days)", core.ErrInvalidHorizon, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: %d listed twice", core.ErrInvalidHorizon, d)
		}
		seen[d] = true
	}
	return nil
}

// HorizonShift converts a horizon in days to the hourly shift.
func HorizonShift(days int) time.Duration {
	return time.Duration(24*days) * core.Hour
}

// SynthesizeLabels attaches one label per horizon to every row of an aligned
// series and keeps only fully labeled rows.
//
// A series shorter than the largest horizon yields an empty, non-nil slice.
// Rows whose own cells are still empty (a unit with no target or site name at
// all) are dropped as well.
func SynthesizeLabels(series dataset.AlignedSeries, horizons []int) ([]dataset.LabeledRecord, error) {
	if err := ValidateHorizons(horizons); err != nil {
		return nil, err
	}

	out := []dataset.LabeledRecord{}
	if len(series.Readings) == 0 {
		return out, nil
	}

	// First target seen at each timestamp
	targetAt := make(map[int64]float64, len(series.Readings))
	for _, r := range series.Readings {
		if !r.Target.Valid {
			continue
		}
		if _, ok := targetAt[r.Timestamp.Unix()]; !ok {
			targetAt[r.Timestamp.Unix()] = r.Target.Float64
		}
	}

	for _, r := range series.Readings {
		if r.Null() {
			continue
		}
		labels := make([]float64, len(horizons))
		complete := true
		for i, d := range horizons {
			v, ok := targetAt[r.Timestamp.Add(HorizonShift(d)).Unix()]
			if !ok {
				complete = false
				break
			}
			labels[i] = v
		}
		if !complete {
			continue
		}
		out = append(out, dataset.LabeledRecord{
			Timestamp: r.Timestamp,
			UnitID:    r.UnitID,
			Site:      r.SiteName,
			Target:    r.Target.Float64,
			Labels:    labels,
		})
	}

	return out, nil
}
