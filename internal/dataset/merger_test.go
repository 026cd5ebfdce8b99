package dataset

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
	"solarprep/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labeled(unit, site string, hour int, target float64) dataset.LabeledRecord {
	return dataset.LabeledRecord{
		Timestamp: at(hour),
		UnitID:    unit,
		Site:      site,
		Target:    target,
		Labels:    []float64{target + 1, target + 7},
	}
}

func weatherAt(region string, hour int, temp float64, humid sql.NullFloat64) dataset.WeatherRecord {
	return dataset.WeatherRecord{
		Timestamp: at(hour),
		Region:    region,
		Values:    []sql.NullFloat64{{Float64: temp, Valid: true}, humid},
	}
}

var mergeSites = dataset.SiteTable{Sites: []dataset.Site{
	{Name: "Acme", ID: "P001", Region: "무안", Latitude: 34.9, Longitude: 126.4},
	{Name: "Bright", ID: "P002", Region: "해남", Latitude: 34.5, Longitude: 126.6},
}}

func TestMerge_JoinsSiteAndWeather(t *testing.T) {
	records := []dataset.LabeledRecord{
		labeled("INV-1", "P002", 1, 5),
		labeled("INV-1", "P001", 0, 3),
	}
	weather := dataset.WeatherTable{
		Attributes: []string{"temp", "humid"},
		Records: []dataset.WeatherRecord{
			weatherAt("무안", 0, 11, sql.NullFloat64{}),
			weatherAt("해남", 1, 12, sql.NullFloat64{Float64: 80, Valid: true}),
		},
	}

	result, err := NewMerger(nil, internal.Discard).Merge(records, mergeSites, weather)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	first := result.Records[0]
	assert.Equal(t, "P001", first.SiteID)
	assert.Equal(t, 34.9, first.Latitude)
	assert.Equal(t, []float64{11, 0}, first.Weather, "null humidity becomes zero")
	assert.Equal(t, []float64{4, 10}, first.Labels)
	assert.Equal(t, "P002", result.Records[1].SiteID)
	assert.Equal(t, []float64{12, 80}, result.Records[1].Weather)
	assert.Empty(t, result.Warnings)
}

func TestMerge_UnknownSiteVanishesAtWeatherJoin(t *testing.T) {
	records := []dataset.LabeledRecord{
		labeled("INV-1", "P001", 0, 3),
		labeled("INV-9", "Unmapped Farm", 0, 3),
	}
	weather := dataset.WeatherTable{
		Attributes: []string{"temp", "humid"},
		Records:    []dataset.WeatherRecord{weatherAt("무안", 0, 11, sql.NullFloat64{})},
	}

	result, err := NewMerger(nil, internal.Discard).Merge(records, mergeSites, weather)
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.Stats.UnmatchedSiteRows)
	assert.Equal(t, 2, result.Stats.AfterSiteJoin)
	assert.Equal(t, 1, result.Stats.AfterWeatherJoin)
	assert.Equal(t, 1, result.Stats.WeatherLoss())
	assert.Len(t, result.Warnings, 2)
}

func TestMerge_InnerJoinDropsUnknownSite(t *testing.T) {
	records := []dataset.LabeledRecord{
		labeled("INV-1", "P001", 0, 3),
		labeled("INV-9", "Unmapped Farm", 0, 3),
	}
	weather := dataset.WeatherTable{
		Attributes: []string{"temp", "humid"},
		Records:    []dataset.WeatherRecord{weatherAt("무안", 0, 11, sql.NullFloat64{})},
	}

	config := DefaultMergeConfig()
	config.SiteJoin = InnerJoin
	result, err := NewMerger(config, internal.Discard).Merge(records, mergeSites, weather)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "P001", result.Records[0].SiteID)
	assert.Equal(t, 1, result.Stats.UnmatchedSiteRows)
	assert.Equal(t, 1, result.Stats.AfterSiteJoin, "unknown sites never reach the weather join")
	assert.Equal(t, 0, result.Stats.WeatherLoss())
	assert.Len(t, result.Warnings, 1)
}

func TestMerge_MissingWeatherHourDropsRow(t *testing.T) {
	records := []dataset.LabeledRecord{
		labeled("INV-1", "P001", 0, 3),
		labeled("INV-1", "P001", 1, 4),
	}
	weather := dataset.WeatherTable{
		Attributes: []string{"temp", "humid"},
		Records:    []dataset.WeatherRecord{weatherAt("무안", 1, 11, sql.NullFloat64{})},
	}

	result, err := NewMerger(nil, internal.Discard).Merge(records, mergeSites, weather)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, at(1), result.Records[0].Timestamp)
}

func TestMerge_ManyToManyWeatherThenDedup(t *testing.T) {
	records := []dataset.LabeledRecord{labeled("INV-1", "P001", 0, 3)}
	// two stations in the same region, one identical to the other
	weather := dataset.WeatherTable{
		Attributes: []string{"temp", "humid"},
		Records: []dataset.WeatherRecord{
			weatherAt("무안", 0, 11, sql.NullFloat64{}),
			weatherAt("무안", 0, 11, sql.NullFloat64{Float64: 0, Valid: true}),
			weatherAt("무안", 0, 13, sql.NullFloat64{}),
		},
	}

	result, err := NewMerger(nil, internal.Discard).Merge(records, mergeSites, weather)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.AfterWeatherJoin)
	assert.Equal(t, 1, result.Stats.DuplicatesRemoved)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 11.0, result.Records[0].Weather[0])
	assert.Equal(t, 13.0, result.Records[1].Weather[0])
}

func TestMerge_ErrorOnDupes(t *testing.T) {
	records := []dataset.LabeledRecord{labeled("INV-1", "P001", 0, 3), labeled("INV-1", "P001", 0, 3)}
	weather := dataset.WeatherTable{
		Attributes: []string{"temp", "humid"},
		Records:    []dataset.WeatherRecord{weatherAt("무안", 0, 11, sql.NullFloat64{})},
	}

	config := DefaultMergeConfig()
	config.DuplicatePolicy = ErrorOnDupes
	_, err := NewMerger(config, internal.Discard).Merge(records, mergeSites, weather)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrIntegrity))
}

func TestMerge_SortedBySiteUnitTime(t *testing.T) {
	var records []dataset.LabeledRecord
	var obs []dataset.WeatherRecord
	for h := 3; h >= 0; h-- {
		records = append(records,
			labeled("INV-2", "P001", h, 1),
			labeled("INV-1", "P002", h, 1),
			labeled("INV-1", "P001", h, 1))
		obs = append(obs, weatherAt("무안", h, 1, sql.NullFloat64{}), weatherAt("해남", h, 1, sql.NullFloat64{}))
	}

	result, err := NewMerger(nil, internal.Discard).Merge(records, mergeSites,
		dataset.WeatherTable{Attributes: []string{"temp", "humid"}, Records: obs})
	require.NoError(t, err)
	require.Len(t, result.Records, 12)

	type key struct {
		site, unit string
		ts         time.Time
	}
	var got []key
	for _, r := range result.Records {
		got = append(got, key{r.SiteID, r.UnitID, r.Timestamp})
	}
	assert.Equal(t, key{"P001", "INV-1", at(0)}, got[0])
	assert.Equal(t, key{"P001", "INV-1", at(3)}, got[3])
	assert.Equal(t, key{"P001", "INV-2", at(0)}, got[4])
	assert.Equal(t, key{"P002", "INV-1", at(3)}, got[11])
}

func TestMerge_ReportsProgress(t *testing.T) {
	var steps []float64
	config := DefaultMergeConfig()
	config.ProgressCallback = func(p float64, _ string) { steps = append(steps, p) }

	_, err := NewMerger(config, internal.Discard).Merge(nil, mergeSites, dataset.WeatherTable{})
	require.NoError(t, err)
	assert.Len(t, steps, 3)
	assert.Equal(t, 1.0, steps[2])
}
