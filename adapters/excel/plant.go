package excel

import (
	"solarprep/domain/core"
	"solarprep/domain/dataset"
)

// ParseReadings converts a plant file into readings. Empty target or site cells
// are kept as nulls for the aligner to repair; a missing column, an empty unit
// or an unparseable cell is malformed input.
func ParseReadings(source string, data *ExcelData, cols PlantColumns) ([]dataset.Reading, error) {
	if err := data.RequireColumns(source, cols.Site, cols.Unit, cols.Date, cols.Target); err != nil {
		return nil, err
	}

	readings := make([]dataset.Reading, 0, len(data.Rows))
	for i, row := range data.Rows {
		ts, err := parseHourlyTimestamp(source, rowNumber(i), cols.Date, row[cols.Date])
		if err != nil {
			return nil, err
		}
		unit := row[cols.Unit]
		if unit == "" {
			return nil, core.NewCellError(core.ErrMalformedInput, source, rowNumber(i), cols.Unit, unit)
		}
		target, err := parseNullableFloat(source, rowNumber(i), cols.Target, row[cols.Target])
		if err != nil {
			return nil, err
		}
		readings = append(readings, dataset.Reading{
			Timestamp: ts,
			UnitID:    unit,
			SiteName:  row[cols.Site],
			Target:    target,
		})
	}
	return readings, nil
}
