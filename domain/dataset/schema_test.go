package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchemaHeadersAndRow(t *testing.T) {
	s := Schema{Target: "Total Yield(kWh)", Horizons: []int{1, 7}, WeatherAttributes: []string{"temp", "humid"}}

	assert.Equal(t, []string{
		"Date", "Inverter", "pp_id", "Total Yield(kWh)",
		"Total Yield(kWh)_1day", "Total Yield(kWh)_7day",
		"pp_lati", "pp_longi", "temp", "humid",
	}, s.Headers())

	row := s.Row(MergedRecord{
		Timestamp: time.Date(2021, 6, 1, 13, 0, 0, 0, time.UTC),
		UnitID:    "KACO 1",
		SiteID:    "P1",
		Target:    12.5,
		Labels:    []float64{13, 14.25},
		Latitude:  34.8,
		Longitude: 126.4,
		Weather:   []float64{21.3, 0},
	})
	assert.Equal(t, []string{"2021-06-01 13:00:00", "KACO 1", "P1", "12.5", "13", "14.25", "34.8", "126.4", "21.3", "0"}, row)
	assert.Len(t, row, len(s.Headers()))
}

func TestBuildParams(t *testing.T) {
	p := BuildParams{Target: "Total Yield(kWh)", Horizons: []int{1, 7}, TestPeriodDays: 3}
	assert.Equal(t, "target_Total Yield(kWh)-day_1_7-test_period_day_3", p.DirName())
	assert.Equal(t, p.Fingerprint(), BuildParams{Target: "Total Yield(kWh)", Horizons: []int{1, 7}, TestPeriodDays: 3}.Fingerprint())
	assert.NotEqual(t, p.Fingerprint(), BuildParams{Target: "Total Yield(kWh)", Horizons: []int{7, 1}, TestPeriodDays: 3}.Fingerprint())
}
