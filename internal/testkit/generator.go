// Package testkit generates synthetic plant logs, a site table and weather
// observations laid out like the original data drop.
package testkit

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"solarprep/adapters/excel"
	"solarprep/domain/core"
)

// Table is a header row plus formatted cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// PlantFile is one reading table inside a plant directory.
type PlantFile struct {
	Dir   string
	Name  string
	Table Table
}

// Dataset is the generated input tree held in memory.
type Dataset struct {
	Sites   Table
	Plants  []PlantFile
	Weather Table

	// Observed readings per unit, for assertions
	Readings map[string]int
}

// Gap removes one hourly reading of one unit.
type Gap struct {
	Unit string
	Hour int // offset from Start
}

type Config struct {
	Seed          int64
	Start         time.Time
	Hours         int
	Plants        int
	UnitsPerPlant int
	Target        string
	Gaps          []Gap

	// PlantFormat is "csv" or "xlsx".
	PlantFormat string

	// NullWeatherEvery blanks one weather cell every n rows; 0 disables.
	NullWeatherEvery int
}

func DefaultConfig() Config {
	return Config{
		Seed:             42,
		Start:            time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Hours:            24 * 45,
		Plants:           3,
		UnitsPerPlant:    2,
		Target:           excel.DefaultTarget,
		PlantFormat:      "csv",
		NullWeatherEvery: 17,
	}
}

// stations pairs each weather station with the region of the plants it covers,
// matching excel.DefaultWeatherConfig.
var stations = []struct{ station, region, county string }{
	{"강진군", "영암", "영암군"},
	{"목포", "무안", "무안군"},
	{"해남", "해남", "해남군"},
}

// SiteName is the canonical table name of plant p.
func SiteName(p int) string {
	return fmt.Sprintf("Sunfield %d", p+1)
}

// SiteID is the pp_id of plant p.
func SiteID(p int) string {
	return fmt.Sprintf("PP%03d", p+1)
}

// UnitName is the inverter name of unit u of plant p.
func UnitName(p, u int) string {
	return fmt.Sprintf("%s-INV%d", SiteID(p), u+1)
}

func Generate(cfg Config) (*Dataset, error) {
	if cfg.Hours <= 0 {
		return nil, fmt.Errorf("hours must be > 0")
	}
	if cfg.Plants <= 0 || cfg.UnitsPerPlant <= 0 {
		return nil, fmt.Errorf("plants and units per plant must be > 0")
	}
	if cfg.Target == "" {
		cfg.Target = excel.DefaultTarget
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	gaps := make(map[string]map[int]bool)
	for _, g := range cfg.Gaps {
		if gaps[g.Unit] == nil {
			gaps[g.Unit] = make(map[int]bool)
		}
		gaps[g.Unit][g.Hour] = true
	}

	ds := &Dataset{Readings: make(map[string]int)}

	siteCols := excel.DefaultSiteColumns()
	ds.Sites.Headers = []string{siteCols.ID, siteCols.Name, siteCols.Address, siteCols.Latitude, siteCols.Longitude}
	for p := 0; p < cfg.Plants; p++ {
		st := stations[p%len(stations)]
		ds.Sites.Rows = append(ds.Sites.Rows, []string{
			SiteID(p),
			SiteName(p),
			fmt.Sprintf("전라남도 %s 태양로 %d", st.county, 100+p),
			fToStr(34.5+0.1*float64(p), 4),
			fToStr(126.3+0.1*float64(p), 4),
		})
	}

	// Plant logs write the site name with the export decoration the key mapper strips.
	plantCols := excel.DefaultPlantColumns(cfg.Target)
	headers := []string{plantCols.Site, plantCols.Unit, plantCols.Date, plantCols.Target}
	for p := 0; p < cfg.Plants; p++ {
		raw := fmt.Sprintf("[%s] %s Power Plant", SiteID(p), SiteName(p))
		table := Table{Headers: headers}
		for u := 0; u < cfg.UnitsPerPlant; u++ {
			unit := UnitName(p, u)
			capacity := 40 + rng.Float64()*20
			for h := 0; h < cfg.Hours; h++ {
				if gaps[unit][h] {
					continue
				}
				ts := cfg.Start.Add(time.Duration(h) * core.Hour)
				table.Rows = append(table.Rows, []string{raw, unit, core.FormatTimestamp(ts), fToStr(yield(rng, ts, capacity), 3)})
				ds.Readings[unit]++
			}
		}
		ds.Plants = append(ds.Plants, PlantFile{
			Dir:   SiteName(p),
			Name:  "log." + cfg.PlantFormat,
			Table: table,
		})
	}

	weather := excel.DefaultWeatherConfig()
	ds.Weather.Headers = []string{weather.StationColumn, weather.TimeColumn}
	for _, c := range weather.Columns {
		ds.Weather.Headers = append(ds.Weather.Headers, c.Source)
	}
	n := 0
	for _, st := range stations {
		for h := 0; h < cfg.Hours; h++ {
			ts := cfg.Start.Add(time.Duration(h) * core.Hour)
			row := []string{st.station, ts.Format("2006-01-02 15:04")}
			for i := range weather.Columns {
				n++
				if cfg.NullWeatherEvery > 0 && n%cfg.NullWeatherEvery == 0 {
					row = append(row, "")
					continue
				}
				row = append(row, fToStr(observation(rng, i, ts), 1))
			}
			ds.Weather.Rows = append(ds.Weather.Rows, row)
		}
	}

	return ds, nil
}

// Paths locates a dataset written by WriteTree.
type Paths struct {
	PlantDir   string
	PlantInfo  string
	WeatherDir string
}

// WriteTree writes the dataset under root in the plant_list/plant_info/weather layout.
func WriteTree(root string, ds *Dataset) (Paths, error) {
	paths := Paths{
		PlantDir:   filepath.Join(root, "plant_list"),
		PlantInfo:  filepath.Join(root, "plant_info.csv"),
		WeatherDir: filepath.Join(root, "weather"),
	}
	if err := os.MkdirAll(paths.WeatherDir, 0o755); err != nil {
		return paths, err
	}
	if err := writeTable(paths.PlantInfo, ds.Sites); err != nil {
		return paths, err
	}
	for _, pf := range ds.Plants {
		dir := filepath.Join(paths.PlantDir, pf.Dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, err
		}
		if err := writeTable(filepath.Join(dir, pf.Name), pf.Table); err != nil {
			return paths, err
		}
	}
	if err := writeTable(filepath.Join(paths.WeatherDir, "asos_hourly.csv"), ds.Weather); err != nil {
		return paths, err
	}
	return paths, nil
}

func writeTable(path string, t Table) error {
	var buf bytes.Buffer
	var err error
	if filepath.Ext(path) == ".xlsx" {
		err = excel.WriteXLSX(&buf, t.Headers, t.Rows)
	} else {
		err = excel.WriteCSV(&buf, t.Headers, t.Rows)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// yield is a clear-sky bell between 06:00 and 18:00 with multiplicative cloud noise.
func yield(rng *rand.Rand, ts time.Time, capacity float64) float64 {
	h := float64(ts.Hour())
	if h < 6 || h > 18 {
		return 0
	}
	clear := math.Sin(math.Pi * (h - 6) / 12)
	return math.Max(0, capacity*clear*(0.7+0.3*rng.Float64()))
}

func observation(rng *rand.Rand, attr int, ts time.Time) float64 {
	day := math.Sin(2 * math.Pi * float64(ts.Hour()-9) / 24)
	switch attr {
	case 0: // temperature
		return 12 + 6*day + rng.NormFloat64()
	case 4: // humidity
		return math.Min(100, math.Max(10, 65-15*day+5*rng.NormFloat64()))
	case 5: // pressure
		return 1013 + 3*rng.NormFloat64()
	default:
		return math.Max(0, rng.Float64()*5)
	}
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
