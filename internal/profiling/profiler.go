// Package profiling summarises the numeric columns of a built dataset.
package profiling

import (
	"math"

	"solarprep/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// DataProfiler computes per-column summaries of the merged table
type DataProfiler struct{}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileColumn summarises one numeric column. An empty column yields a
// profile with only the name set.
func (dp *DataProfiler) ProfileColumn(name string, data []float64) (dataset.ColumnProfile, error) {
	profile := dataset.ColumnProfile{Name: name, Count: len(data)}
	if len(data) == 0 {
		return profile, nil
	}

	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviation(data); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, err
	}
	return profile, nil
}

// ProfileDataset profiles the target and every label column. Label profiles
// carry their Pearson correlation with the target, left unset when either
// column is constant.
func (dp *DataProfiler) ProfileDataset(schema dataset.Schema, records []dataset.MergedRecord) ([]dataset.ColumnProfile, error) {
	target := make([]float64, len(records))
	labels := make([][]float64, len(schema.Horizons))
	for i := range labels {
		labels[i] = make([]float64, len(records))
	}
	for r, rec := range records {
		target[r] = rec.Target
		for i := range labels {
			if i < len(rec.Labels) {
				labels[i][r] = rec.Labels[i]
			}
		}
	}

	profiles := make([]dataset.ColumnProfile, 0, 1+len(labels))
	p, err := dp.ProfileColumn(schema.Target, target)
	if err != nil {
		return nil, err
	}
	profiles = append(profiles, p)

	for i, d := range schema.Horizons {
		p, err := dp.ProfileColumn(dataset.LabelName(schema.Target, d), labels[i])
		if err != nil {
			return nil, err
		}
		if len(records) > 1 {
			if c := stat.Correlation(target, labels[i], nil); !math.IsNaN(c) && !math.IsInf(c, 0) {
				p.Correlation = &c
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
