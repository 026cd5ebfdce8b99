package dataset

import (
	"fmt"
	"sort"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
	"solarprep/internal"
)

// DuplicatePolicy defines how to handle duplicate rows during merge
type DuplicatePolicy string

const (
	KeepFirst    DuplicatePolicy = "keep_first" // Keep first occurrence
	KeepAll      DuplicatePolicy = "keep_all"   // Leave duplicates in place
	ErrorOnDupes DuplicatePolicy = "error"      // Fail with an integrity error
)

// JoinType defines the type of the site metadata join
type JoinType string

const (
	LeftJoin  JoinType = "left"  // all labeled rows, empty metadata when the site is unknown
	InnerJoin JoinType = "inner" // labeled rows with a known site only
)

// MergeConfig holds configuration for merge operations
type MergeConfig struct {
	SiteJoin        JoinType
	DuplicatePolicy DuplicatePolicy
	// ProgressCallback receives the completed fraction after each merge step.
	ProgressCallback func(progress float64, message string)
}

// DefaultMergeConfig mirrors the original job: left site join, keep first duplicate.
func DefaultMergeConfig() *MergeConfig {
	return &MergeConfig{
		SiteJoin:        LeftJoin,
		DuplicatePolicy: KeepFirst,
	}
}

// MergeResult contains the result of a merge operation
type MergeResult struct {
	Records  []dataset.MergedRecord
	Stats    dataset.JoinStats
	Warnings []string
}

// Merger joins labeled records with site metadata and weather.
type Merger struct {
	config *MergeConfig
	logger *internal.Logger
}

// NewMerger creates a new merger
func NewMerger(config *MergeConfig, logger *internal.Logger) *Merger {
	if config == nil {
		config = DefaultMergeConfig()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Merger{config: config, logger: logger.With("Merger")}
}

// sited is a labeled record after the site join, before weather is attached.
type sited struct {
	record dataset.LabeledRecord
	site   dataset.Site
}

type weatherKey struct {
	unix   int64
	region string
}

// Merge runs the site join, the weather join and the duplicate removal.
//
// Records must already carry canonical site IDs. Rows whose site has no region
// cannot meet any weather observation and are lost at the weather join; the
// loss is counted and logged, never silent.
func (m *Merger) Merge(records []dataset.LabeledRecord, sites dataset.SiteTable, weather dataset.WeatherTable) (*MergeResult, error) {
	result := &MergeResult{}
	stats := &result.Stats
	stats.LabeledRows = len(records)

	// ==========================================================================
	// STEP 1: site metadata
	// ==========================================================================

	byID := sites.ByID()
	joined := make([]sited, 0, len(records))
	for _, r := range records {
		matches := byID[r.Site]
		if len(matches) == 0 {
			stats.UnmatchedSiteRows++
			if m.config.SiteJoin == LeftJoin {
				joined = append(joined, sited{record: r})
			}
			continue
		}
		for _, s := range matches {
			joined = append(joined, sited{record: r, site: s})
		}
	}
	stats.AfterSiteJoin = len(joined)
	if stats.UnmatchedSiteRows > 0 {
		m.warn(result, "%d labeled rows have no site metadata", stats.UnmatchedSiteRows)
	}
	m.progress(1.0/3, "site join complete")

	// ==========================================================================
	// STEP 2: weather on (timestamp, region)
	// ==========================================================================

	index := make(map[weatherKey][]int, len(weather.Records))
	filled := make([][]float64, len(weather.Records))
	for i, w := range weather.Records {
		if w.Region == "" {
			continue
		}
		k := weatherKey{w.Timestamp.Unix(), w.Region}
		index[k] = append(index[k], i)
		filled[i] = w.FillZero()
	}

	type regioned struct {
		record dataset.MergedRecord
		region string
	}
	withWeather := make([]regioned, 0, len(joined))
	for _, j := range joined {
		if j.site.Region == "" {
			continue
		}
		for _, wi := range index[weatherKey{j.record.Timestamp.Unix(), j.site.Region}] {
			withWeather = append(withWeather, regioned{
				record: dataset.MergedRecord{
					Timestamp: j.record.Timestamp,
					UnitID:    j.record.UnitID,
					SiteID:    j.record.Site,
					Target:    j.record.Target,
					Labels:    j.record.Labels,
					Latitude:  j.site.Latitude,
					Longitude: j.site.Longitude,
					Weather:   filled[wi],
				},
				region: j.site.Region,
			})
		}
	}
	stats.AfterWeatherJoin = len(withWeather)
	if loss := stats.WeatherLoss(); loss > 0 {
		m.warn(result, "weather join dropped %d of %d rows", loss, stats.AfterSiteJoin)
	}
	m.progress(2.0/3, "weather join complete")

	// ==========================================================================
	// STEP 3: duplicates, region drop, ordering
	// ==========================================================================

	var schema dataset.Schema
	seenRows := make(map[core.RowHash]bool, len(withWeather))
	out := make([]dataset.MergedRecord, 0, len(withWeather))
	for _, r := range withWeather {
		if m.config.DuplicatePolicy != KeepAll {
			h := core.NewRowHash(append(schema.Row(r.record), r.region))
			if seenRows[h] {
				if m.config.DuplicatePolicy == ErrorOnDupes {
					return nil, fmt.Errorf("%w: duplicate row for unit %q at %s",
						core.ErrIntegrity, r.record.UnitID, core.FormatTimestamp(r.record.Timestamp))
				}
				stats.DuplicatesRemoved++
				continue
			}
			seenRows[h] = true
		}
		out = append(out, r.record)
	}
	if stats.DuplicatesRemoved > 0 {
		m.warn(result, "removed %d duplicate rows", stats.DuplicatesRemoved)
	}

	SortMerged(out)
	stats.FinalRows = len(out)
	result.Records = out
	m.progress(1, "merge complete")

	m.logger.Info("merged %d labeled rows into %d rows", stats.LabeledRows, stats.FinalRows)
	return result, nil
}

// SortMerged orders records by site ID, unit ID and timestamp.
func SortMerged(records []dataset.MergedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.SiteID != b.SiteID {
			return a.SiteID < b.SiteID
		}
		if a.UnitID != b.UnitID {
			return a.UnitID < b.UnitID
		}
		return a.Timestamp.Before(b.Timestamp)
	})
}

func (m *Merger) warn(result *MergeResult, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	m.logger.Warn("%s", msg)
}

func (m *Merger) progress(p float64, message string) {
	if m.config.ProgressCallback != nil {
		m.config.ProgressCallback(p, message)
	}
}
