// Package dataset turns raw plant readings into aligned, labeled and merged
// records.
//
// The Processor handles one batch of readings (one plant directory): it groups
// readings by unit, repairs every unit's timeline and synthesizes labels on a
// bounded worker pool, then concatenates the units in a deterministic order.
package dataset

import (
	"context"
	"runtime"
	"sort"

	"solarprep/adapters/stats/temporal"
	"solarprep/domain/dataset"
	"solarprep/internal"

	"golang.org/x/sync/errgroup"
)

// ProcessorConfig holds configuration for batch processing
type ProcessorConfig struct {
	Horizons []int // label horizons in days, in output column order
	Workers  int   // concurrent units; <= 0 means runtime.NumCPU()
}

// DefaultProcessorConfig returns the horizons of the original job and one worker per CPU
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Horizons: append([]int(nil), temporal.DefaultHorizons...),
		Workers:  runtime.NumCPU(),
	}
}

// BatchResult contains the output of one batch
type BatchResult struct {
	Records           []dataset.LabeledRecord // unit ascending, then timestamp ascending
	Synthesized       int                     // slots added by alignment across all units
	Units             int
	Readings          int // input rows
	DuplicateReadings int // exact duplicates dropped before grouping
}

// Processor handles per-unit alignment and labeling
type Processor struct {
	config ProcessorConfig
	logger *internal.Logger
}

// NewProcessor creates a new batch processor
func NewProcessor(config ProcessorConfig, logger *internal.Logger) *Processor {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Processor{config: config, logger: logger.With("SeriesBatch")}
}

type unitGroup struct {
	unitID   string
	readings []dataset.Reading
}

type unitResult struct {
	records     []dataset.LabeledRecord
	synthesized int
}

// ProcessBatch aligns and labels every unit in readings.
//
// Units are independent and run concurrently; the synthesized-slot counter is
// summed after all units finished and the output is re-sorted, so the result does
// not depend on the worker count or scheduling.
func (p *Processor) ProcessBatch(ctx context.Context, readings []dataset.Reading) (*BatchResult, error) {
	if err := temporal.ValidateHorizons(p.config.Horizons); err != nil {
		return nil, err
	}

	unique := dropDuplicateReadings(readings)
	groups := groupByUnit(unique)
	results := make([]unitResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for i, group := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			aligned, err := temporal.AlignSeries(group.unitID, group.readings)
			if err != nil {
				return err
			}
			labeled, err := temporal.SynthesizeLabels(aligned, p.config.Horizons)
			if err != nil {
				return err
			}
			p.logger.Debug("unit %q: %d readings, %d slots filled, %d labeled rows",
				group.unitID, len(group.readings), aligned.Synthesized, len(labeled))
			results[i] = unitResult{records: labeled, synthesized: aligned.Synthesized}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &BatchResult{
		Units:             len(groups),
		Readings:          len(readings),
		DuplicateReadings: len(readings) - len(unique),
	}
	total := 0
	for _, r := range results {
		total += len(r.records)
	}
	out.Records = make([]dataset.LabeledRecord, 0, total)
	for _, r := range results {
		out.Synthesized += r.synthesized
		out.Records = append(out.Records, r.records...)
	}
	SortLabeled(out.Records)

	return out, nil
}

// SortLabeled orders records by unit, then timestamp. Rows sharing both keep
// their relative order.
func SortLabeled(records []dataset.LabeledRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UnitID != records[j].UnitID {
			return records[i].UnitID < records[j].UnitID
		}
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

type readingKey struct {
	unix   int64
	unit   string
	site   string
	valid  bool
	target float64
}

// dropDuplicateReadings removes exact duplicates, keeping the first occurrence.
func dropDuplicateReadings(readings []dataset.Reading) []dataset.Reading {
	seen := make(map[readingKey]bool, len(readings))
	out := make([]dataset.Reading, 0, len(readings))
	for _, r := range readings {
		k := readingKey{r.Timestamp.Unix(), r.UnitID, r.SiteName, r.Target.Valid, r.Target.Float64}
		if !r.Target.Valid {
			k.target = 0
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// groupByUnit partitions readings by unit ID in order of first appearance.
func groupByUnit(readings []dataset.Reading) []unitGroup {
	index := make(map[string]int)
	var groups []unitGroup
	for _, r := range readings {
		i, ok := index[r.UnitID]
		if !ok {
			i = len(groups)
			index[r.UnitID] = i
			groups = append(groups, unitGroup{unitID: r.UnitID})
		}
		groups[i].readings = append(groups[i].readings, r)
	}
	return groups
}
