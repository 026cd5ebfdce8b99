// Package analysis holds the chronological train/test partitioning of the
// merged dataset.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
	"solarprep/internal"
)

// DataPartitioner splits merged records by their position inside each calendar
// month.
//
// Every observed (year, month) gets a half-open hourly timeline running from the
// 1st of the month to the 1st of the next calendar month. The last observed
// month ends at the dataset's maximum timestamp instead, and that end is also
// exclusive. The trailing 24*N slots of each timeline form the month's test
// window. A row is a test row iff its timestamp lies in its own month's window.
type DataPartitioner struct {
	logger *internal.Logger
}

// PartitionResult represents the outcome of data partitioning
type PartitionResult struct {
	dataset.Split
	Stats dataset.SplitStats
}

// NewDataPartitioner creates a chronological partitioner
func NewDataPartitioner(logger *internal.Logger) *DataPartitioner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataPartitioner{logger: logger.With("Splitter")}
}

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{t.Year(), t.Month()}
}

// MonthWindows computes the test window of every month present in timestamps,
// in chronological order.
func MonthWindows(timestamps []time.Time, testPeriodDays int) ([]dataset.MonthWindow, error) {
	if testPeriodDays < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidTestPeriod, testPeriodDays)
	}
	if len(timestamps) == 0 {
		return nil, nil
	}

	seen := make(map[monthKey]bool)
	var starts []time.Time
	maxTs := timestamps[0]
	for _, ts := range timestamps {
		if ts.After(maxTs) {
			maxTs = ts
		}
		k := keyOf(ts)
		if !seen[k] {
			seen[k] = true
			starts = append(starts, core.MonthStart(ts))
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	trailing := time.Duration(24*testPeriodDays) * core.Hour
	windows := make([]dataset.MonthWindow, len(starts))
	for i, start := range starts {
		end := core.NextMonthStart(start)
		if i == len(starts)-1 {
			end = maxTs
		}
		windowStart := end.Add(-trailing)
		if windowStart.Before(start) {
			windowStart = start
		}
		windows[i] = dataset.MonthWindow{
			Month:       start.Format("2006-01"),
			WindowStart: windowStart,
			WindowEnd:   end,
			TestSlots:   core.HourSlots(windowStart, end),
		}
	}
	return windows, nil
}

// PartitionDataset assigns every record to exactly one side. Input order is
// preserved within each side.
func (dp *DataPartitioner) PartitionDataset(records []dataset.MergedRecord, testPeriodDays int) (*PartitionResult, error) {
	timestamps := make([]time.Time, len(records))
	for i, r := range records {
		timestamps[i] = r.Timestamp
	}
	windows, err := MonthWindows(timestamps, testPeriodDays)
	if err != nil {
		return nil, err
	}

	index := make(map[monthKey]int, len(windows))
	for i, w := range windows {
		index[keyOf(w.WindowStart)] = i
	}

	result := &PartitionResult{
		Split: dataset.Split{
			Train: make([]dataset.MergedRecord, 0, len(records)),
			Test:  make([]dataset.MergedRecord, 0),
		},
	}
	for _, r := range records {
		i := index[keyOf(r.Timestamp)]
		w := &windows[i]
		if !r.Timestamp.Before(w.WindowStart) && r.Timestamp.Before(w.WindowEnd) {
			w.TestRows++
			result.Test = append(result.Test, r)
		} else {
			result.Train = append(result.Train, r)
		}
	}

	result.Stats = dataset.SplitStats{
		TrainRows: len(result.Train),
		TestRows:  len(result.Test),
		Months:    windows,
	}
	for _, w := range windows {
		dp.logger.Debug("month %s: test window [%s, %s), %d rows",
			w.Month, core.FormatTimestamp(w.WindowStart), core.FormatTimestamp(w.WindowEnd), w.TestRows)
	}
	dp.logger.Info("split %d rows into %d train and %d test across %d months",
		len(records), result.Stats.TrainRows, result.Stats.TestRows, len(windows))

	if err := dp.ValidatePartitions(len(records), result); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidatePartitions checks that no row was lost or duplicated by the split.
func (dp *DataPartitioner) ValidatePartitions(total int, result *PartitionResult) error {
	if len(result.Train)+len(result.Test) != total {
		return fmt.Errorf("%w: split produced %d+%d rows from %d",
			core.ErrIntegrity, len(result.Train), len(result.Test), total)
	}
	return nil
}
