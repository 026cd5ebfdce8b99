package excel

// DefaultTarget is the generation column forecast by default.
const DefaultTarget = "Total Yield(kWh)"

// PlantColumns names the columns read from a plant reading file.
type PlantColumns struct {
	Site   string `yaml:"site" json:"site"`
	Unit   string `yaml:"unit" json:"unit"`
	Date   string `yaml:"date" json:"date"`
	Target string `yaml:"-" json:"target"`
}

// SiteColumns names the columns of the canonical site table.
type SiteColumns struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Address   string `yaml:"address" json:"address"`
	Latitude  string `yaml:"latitude" json:"latitude"`
	Longitude string `yaml:"longitude" json:"longitude"`
}

// ColumnRename maps one source weather column to its output attribute name.
type ColumnRename struct {
	Source string `yaml:"source" json:"source"`
	Name   string `yaml:"name" json:"name"`
}

// WeatherConfig describes the weather observation files.
type WeatherConfig struct {
	StationColumn  string            `yaml:"station_column" json:"station_column"`
	TimeColumn     string            `yaml:"time_column" json:"time_column"`
	Columns        []ColumnRename    `yaml:"columns" json:"columns"` // output order
	StationRegions map[string]string `yaml:"station_regions" json:"station_regions"`
}

// ParseConfig holds every table layout the parsers need.
type ParseConfig struct {
	Plant   PlantColumns  `yaml:"plant" json:"plant"`
	Sites   SiteColumns   `yaml:"sites" json:"sites"`
	Weather WeatherConfig `yaml:"weather" json:"weather"`
}

// DefaultPlantColumns returns the plant log layout with the given target column.
func DefaultPlantColumns(target string) PlantColumns {
	if target == "" {
		target = DefaultTarget
	}
	return PlantColumns{Site: "Plant", Unit: "Inverter", Date: "Date", Target: target}
}

// DefaultSiteColumns returns the plant_info layout.
func DefaultSiteColumns() SiteColumns {
	return SiteColumns{
		ID:        "pp_id",
		Name:      "pp_name",
		Address:   "pp_addr",
		Latitude:  "pp_lati",
		Longitude: "pp_longi",
	}
}

// DefaultWeatherConfig returns the KMA hourly observation layout and the
// station lookup of the three stations nearest to the plants.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		StationColumn: "지점명",
		TimeColumn:    "일시",
		Columns: []ColumnRename{
			{Source: "기온(°C)", Name: "temp"},
			{Source: "강수량(mm)", Name: "precipitation"},
			{Source: "풍속(m/s)", Name: "wind_speed"},
			{Source: "풍향(16방위)", Name: "wind_direction"},
			{Source: "습도(%)", Name: "humid"},
			{Source: "현지기압(hPa)", Name: "atmo_pressure"},
			{Source: "일조(hr)", Name: "sunshine"},
			{Source: "일사(MJ/m2)", Name: "solar_radiation"},
			{Source: "적설(cm)", Name: "snow_cover"},
			{Source: "전운량(10분위)", Name: "cloud_cover"},
			{Source: "지면온도(°C)", Name: "ground_temp"},
		},
		StationRegions: map[string]string{
			"강진군": "영암",
			"목포":  "무안",
			"해남":  "해남",
		},
	}
}

// DefaultParseConfig returns the layouts of the original data drop.
func DefaultParseConfig(target string) ParseConfig {
	return ParseConfig{
		Plant:   DefaultPlantColumns(target),
		Sites:   DefaultSiteColumns(),
		Weather: DefaultWeatherConfig(),
	}
}

// Attributes returns the output weather attribute names in order.
func (c WeatherConfig) Attributes() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}
