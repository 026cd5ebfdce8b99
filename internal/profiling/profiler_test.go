package profiling

import (
	"testing"

	"solarprep/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileColumn(t *testing.T) {
	p, err := NewDataProfiler().ProfileColumn("x", []float64{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, 4, p.Count)
	assert.Equal(t, 2.5, p.Mean)
	assert.Equal(t, 2.5, p.Median)
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 4.0, p.Max)
	assert.InDelta(t, 1.118, p.StdDev, 0.001)
}

func TestProfileColumn_Empty(t *testing.T) {
	p, err := NewDataProfiler().ProfileColumn("x", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, "x", p.Name)
}

func TestProfileDataset(t *testing.T) {
	schema := dataset.Schema{Target: "y", Horizons: []int{1, 7}}
	records := []dataset.MergedRecord{
		{Target: 1, Labels: []float64{2, 5}},
		{Target: 2, Labels: []float64{4, 5}},
		{Target: 3, Labels: []float64{6, 5}},
	}

	profiles, err := NewDataProfiler().ProfileDataset(schema, records)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	assert.Equal(t, "y", profiles[0].Name)
	assert.Nil(t, profiles[0].Correlation)

	assert.Equal(t, "y_1day", profiles[1].Name)
	require.NotNil(t, profiles[1].Correlation)
	assert.InDelta(t, 1.0, *profiles[1].Correlation, 1e-9)

	// constant label: correlation undefined
	assert.Equal(t, "y_7day", profiles[2].Name)
	assert.Nil(t, profiles[2].Correlation)
}

func TestProfileDataset_Empty(t *testing.T) {
	profiles, err := NewDataProfiler().ProfileDataset(dataset.Schema{Target: "y", Horizons: []int{1}}, nil)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, 0, profiles[1].Count)
}
