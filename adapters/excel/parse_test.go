package excel

import (
	"errors"
	"testing"
	"time"

	"solarprep/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(headers []string, rows ...[]string) *ExcelData {
	data := &ExcelData{Headers: headers}
	for _, r := range rows {
		row := make(RawRowData)
		for i, h := range headers {
			row[h] = r[i]
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// ============================================================================
// TEST: ParseReadings
// ============================================================================

func TestParseReadings(t *testing.T) {
	cols := DefaultPlantColumns("")
	data := table([]string{"Plant", "Inverter", "Date", "Total Yield(kWh)", "Extra"},
		[]string{"Acme Solar", "KACO 1", "2021-03-01 00:00:00", "1,024.5", "x"},
		[]string{"", "KACO 1", "2021-03-01 01:00", "", "y"},
	)

	readings, err := ParseReadings("plant.csv", data, cols)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), readings[0].Timestamp)
	assert.Equal(t, 1024.5, readings[0].Target.Float64)
	assert.True(t, readings[0].Target.Valid)
	assert.False(t, readings[1].Target.Valid)
	assert.Equal(t, "", readings[1].SiteName)
	assert.True(t, readings[1].Null())
}

func TestParseReadings_MalformedInput(t *testing.T) {
	cols := DefaultPlantColumns("")
	headers := []string{"Plant", "Inverter", "Date", "Total Yield(kWh)"}

	tests := []struct {
		name string
		data *ExcelData
		want error
	}{
		{"missing target column", table([]string{"Plant", "Inverter", "Date"}), core.ErrMissingColumn},
		{"bad timestamp", table(headers, []string{"A", "K", "yesterday", "1"}), core.ErrBadTimestamp},
		{"off grid", table(headers, []string{"A", "K", "2021-03-01 00:30", "1"}), core.ErrOffGridTime},
		{"bad number", table(headers, []string{"A", "K", "2021-03-01 00:00", "lots"}), core.ErrBadNumber},
		{"empty unit", table(headers, []string{"A", "", "2021-03-01 00:00", "1"}), core.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReadings("plant.csv", tt.data, cols)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, core.IsMalformedInputError(err))
		})
	}
}

// ============================================================================
// TEST: ParseSiteTable
// ============================================================================

func TestRegionFromAddress(t *testing.T) {
	assert.Equal(t, "무안", RegionFromAddress("전라남도 무안군 현경면 123"))
	assert.Equal(t, "목포", RegionFromAddress("전라남도  목포시 산정동"))
	assert.Equal(t, "", RegionFromAddress("전라남도"))
	assert.Equal(t, "", RegionFromAddress(""))
}

func TestParseSiteTable(t *testing.T) {
	data := table([]string{"pp_id", "pp_name", "pp_addr", "pp_lati", "pp_longi"},
		[]string{"P001", "Acme", "전라남도 해남군 산이면", "34.6", "126.5"},
		[]string{"P002", "", "전라남도 영암군 삼호읍", "", ""},
	)

	sites, err := ParseSiteTable("plant_info.csv", data, DefaultSiteColumns())
	require.NoError(t, err)
	require.Len(t, sites.Sites, 2)
	assert.Equal(t, "해남", sites.Sites[0].Region)
	assert.Equal(t, 34.6, sites.Sites[0].Latitude)
	assert.Equal(t, "영암", sites.Sites[1].Region)
	assert.Equal(t, 0.0, sites.Sites[1].Longitude)
}

func TestParseSiteTable_MissingColumn(t *testing.T) {
	data := table([]string{"pp_id", "pp_name"})
	_, err := ParseSiteTable("plant_info.csv", data, DefaultSiteColumns())
	assert.True(t, errors.Is(err, core.ErrMissingColumn))
}

// ============================================================================
// TEST: ParseWeather
// ============================================================================

func weatherHeaders(cfg WeatherConfig) []string {
	headers := []string{"지점", cfg.StationColumn, cfg.TimeColumn}
	for _, c := range cfg.Columns {
		headers = append(headers, c.Source)
	}
	return headers
}

func weatherRow(station, ts string, n int, cell string) []string {
	row := []string{"165", station, ts}
	for i := 0; i < n; i++ {
		row = append(row, cell)
	}
	return row
}

func TestParseWeather(t *testing.T) {
	cfg := DefaultWeatherConfig()
	n := len(cfg.Columns)
	data := table(weatherHeaders(cfg),
		weatherRow("목포", "2021-03-01 00:00", n, "1.5"),
		weatherRow("강진군", "2021-03-01 01:00", n, ""),
		weatherRow("서울", "2021-03-01 01:00", n, "2"),
	)

	weather, err := ParseWeather("weather.xlsx", data, cfg)
	require.NoError(t, err)

	assert.Equal(t, "temp", weather.Attributes[0])
	assert.Equal(t, "ground_temp", weather.Attributes[n-1])
	require.Len(t, weather.Records, 3)
	assert.Equal(t, "무안", weather.Records[0].Region)
	assert.Equal(t, 1.5, weather.Records[0].Values[0].Float64)
	assert.Equal(t, "영암", weather.Records[1].Region)
	assert.False(t, weather.Records[1].Values[3].Valid)
	assert.Equal(t, 0.0, weather.Records[1].FillZero()[3])
	assert.Equal(t, "", weather.Records[2].Region, "unknown station")
}

func TestParseWeather_MissingAttribute(t *testing.T) {
	cfg := DefaultWeatherConfig()
	headers := weatherHeaders(cfg)
	data := table(headers[:len(headers)-1])

	_, err := ParseWeather("weather.xlsx", data, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "지면온도(°C)")
}

func TestAppendWeather(t *testing.T) {
	cfg := DefaultWeatherConfig()
	n := len(cfg.Columns)
	a, err := ParseWeather("a.xlsx", table(weatherHeaders(cfg), weatherRow("목포", "2021-03-01 00:00", n, "1")), cfg)
	require.NoError(t, err)
	b, err := ParseWeather("b.xlsx", table(weatherHeaders(cfg), weatherRow("해남", "2021-03-01 00:00", n, "2")), cfg)
	require.NoError(t, err)

	var all = a
	all.Records = nil
	AppendWeather(&all, a)
	AppendWeather(&all, b)
	assert.Len(t, all.Records, 2)
	assert.Equal(t, cfg.Attributes(), all.Attributes)
}
