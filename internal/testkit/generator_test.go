package testkit

import (
	"path/filepath"
	"testing"
	"time"

	"solarprep/adapters/excel"
	"solarprep/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hours = 48
	cfg.Gaps = []Gap{{Unit: UnitName(0, 1), Hour: 5}}

	ds, err := Generate(cfg)
	require.NoError(t, err)

	assert.Len(t, ds.Sites.Rows, 3)
	require.Len(t, ds.Plants, 3)
	assert.Len(t, ds.Plants[0].Table.Rows, 2*48-1)
	assert.Equal(t, 47, ds.Readings[UnitName(0, 1)])
	assert.Equal(t, 48, ds.Readings[UnitName(2, 0)])
	assert.Len(t, ds.Weather.Rows, 3*48)
	assert.Len(t, ds.Weather.Headers, 2+len(excel.DefaultWeatherConfig().Columns))
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(DefaultConfig())
	require.NoError(t, err)
	b, err := Generate(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a.Plants[1].Table.Rows[30], b.Plants[1].Table.Rows[30])
}

func TestGenerateRejectsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hours = 0
	_, err := Generate(cfg)
	assert.Error(t, err)
}

func TestWriteTreeReadsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hours = 24
	cfg.Plants = 2
	cfg.PlantFormat = "xlsx"
	ds, err := Generate(cfg)
	require.NoError(t, err)

	paths, err := WriteTree(t.TempDir(), ds)
	require.NoError(t, err)

	parse := excel.DefaultParseConfig(cfg.Target)

	data, err := excel.NewDataReader(paths.PlantInfo, internal.Discard).ReadData()
	require.NoError(t, err)
	sites, err := excel.ParseSiteTable(paths.PlantInfo, data, parse.Sites)
	require.NoError(t, err)
	require.Len(t, sites.Sites, 2)
	assert.Equal(t, "영암", sites.Sites[0].Region)
	assert.Equal(t, "무안", sites.Sites[1].Region)

	plantFile := filepath.Join(paths.PlantDir, SiteName(1), "log.xlsx")
	data, err = excel.NewDataReader(plantFile, internal.Discard).ReadData()
	require.NoError(t, err)
	readings, err := excel.ParseReadings(plantFile, data, parse.Plant)
	require.NoError(t, err)
	assert.Len(t, readings, 2*24)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), readings[0].Timestamp)

	weatherFile := filepath.Join(paths.WeatherDir, "asos_hourly.csv")
	data, err = excel.NewDataReader(weatherFile, internal.Discard).ReadData()
	require.NoError(t, err)
	weather, err := excel.ParseWeather(weatherFile, data, parse.Weather)
	require.NoError(t, err)
	assert.Len(t, weather.Records, 3*24)
}
