package excel

import (
	"database/sql"

	"solarprep/domain/dataset"
)

// ParseWeather converts one weather file into observations. Stations missing
// from the lookup keep an empty region and never join; empty attribute cells
// stay null until the merge fills them.
func ParseWeather(source string, data *ExcelData, cfg WeatherConfig) (dataset.WeatherTable, error) {
	required := []string{cfg.StationColumn, cfg.TimeColumn}
	for _, c := range cfg.Columns {
		required = append(required, c.Source)
	}
	if err := data.RequireColumns(source, required...); err != nil {
		return dataset.WeatherTable{}, err
	}

	table := dataset.WeatherTable{
		Attributes: cfg.Attributes(),
		Records:    make([]dataset.WeatherRecord, 0, len(data.Rows)),
	}
	for i, row := range data.Rows {
		ts, err := parseHourlyTimestamp(source, rowNumber(i), cfg.TimeColumn, row[cfg.TimeColumn])
		if err != nil {
			return dataset.WeatherTable{}, err
		}
		values := make([]sql.NullFloat64, len(cfg.Columns))
		for j, c := range cfg.Columns {
			values[j], err = parseNullableFloat(source, rowNumber(i), c.Source, row[c.Source])
			if err != nil {
				return dataset.WeatherTable{}, err
			}
		}
		table.Records = append(table.Records, dataset.WeatherRecord{
			Timestamp: ts,
			Region:    cfg.StationRegions[row[cfg.StationColumn]],
			Values:    values,
		})
	}
	return table, nil
}

// AppendWeather concatenates observations of tables sharing one attribute schema.
func AppendWeather(dst *dataset.WeatherTable, src dataset.WeatherTable) {
	if dst.Attributes == nil {
		dst.Attributes = src.Attributes
	}
	dst.Records = append(dst.Records, src.Records...)
}
