package temporal

import (
	"errors"
	"testing"

	"solarprep/domain/core"
	"solarprep/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlySeries(t *testing.T, hours int, value func(h int) float64) dataset.AlignedSeries {
	t.Helper()
	readings := make([]dataset.Reading, hours)
	for h := 0; h < hours; h++ {
		readings[h] = reading(h, value(h))
	}
	aligned, err := AlignSeries("KACO 1", readings)
	require.NoError(t, err)
	return aligned
}

func TestSynthesizeLabels_ShiftsByDays(t *testing.T) {
	series := hourlySeries(t, 24*9, func(h int) float64 { return float64(h) })

	records, err := SynthesizeLabels(series, []int{1, 7})
	require.NoError(t, err)

	// 216 hours; the 7-day label needs 168 hours ahead
	require.Len(t, records, 216-168)
	for _, r := range records {
		h := float64(r.Timestamp.Sub(t0).Hours())
		assert.Equal(t, h, r.Target)
		require.Len(t, r.Labels, 2)
		assert.Equal(t, h+24, r.Labels[0])
		assert.Equal(t, h+168, r.Labels[1])
	}
}

func TestSynthesizeLabels_ConstantSeries(t *testing.T) {
	series := hourlySeries(t, 24*4, func(int) float64 { return 42 })

	records, err := SynthesizeLabels(series, []int{3, 1, 2})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, []float64{42, 42, 42}, r.Labels)
	}
}

func TestSynthesizeLabels_HorizonOrderOnlyChangesLayout(t *testing.T) {
	series := hourlySeries(t, 24*3, func(h int) float64 { return float64(h % 24) })

	a, err := SynthesizeLabels(series, []int{1, 2})
	require.NoError(t, err)
	b, err := SynthesizeLabels(series, []int{2, 1})
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Labels[0], b[i].Labels[1])
		assert.Equal(t, a[i].Labels[1], b[i].Labels[0])
	}
}

func TestSynthesizeLabels_SpanShorterThanHorizon(t *testing.T) {
	series := hourlySeries(t, 72, func(int) float64 { return 1 })

	records, err := SynthesizeLabels(series, []int{1, 7})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSynthesizeLabels_InvalidHorizons(t *testing.T) {
	series := hourlySeries(t, 48, func(int) float64 { return 1 })

	for _, horizons := range [][]int{nil, {0}, {-1}, {1, 1}} {
		_, err := SynthesizeLabels(series, horizons)
		require.Error(t, err, "%v", horizons)
		assert.True(t, errors.Is(err, core.ErrInvalidHorizon))
	}
}

func TestSynthesizeLabels_DropsUnrepairableRows(t *testing.T) {
	series := hourlySeries(t, 48, func(int) float64 { return 1 })
	for i := range series.Readings {
		series.Readings[i].SiteName = ""
	}

	records, err := SynthesizeLabels(series, []int{1})
	require.NoError(t, err)
	assert.Empty(t, records)
}
