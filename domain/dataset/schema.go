package dataset

import (
	"fmt"
	"strconv"

	"solarprep/domain/core"
)

// Output column names shared with the original dataset layout.
const (
	ColumnDate      = "Date"
	ColumnUnit      = "Inverter"
	ColumnSiteID    = "pp_id"
	ColumnLatitude  = "pp_lati"
	ColumnLongitude = "pp_longi"
)

// Schema describes the columns of the train and test tables.
type Schema struct {
	Target            string
	Horizons          []int
	WeatherAttributes []string
}

// LabelName names the label column for horizon d.
func LabelName(target string, d int) string {
	return fmt.Sprintf("%s_%dday", target, d)
}

// Headers returns the ordered output column names.
func (s Schema) Headers() []string {
	headers := make([]string, 0, 6+len(s.Horizons)+len(s.WeatherAttributes))
	headers = append(headers, ColumnDate, ColumnUnit, ColumnSiteID, s.Target)
	for _, d := range s.Horizons {
		headers = append(headers, LabelName(s.Target, d))
	}
	headers = append(headers, ColumnLatitude, ColumnLongitude)
	headers = append(headers, s.WeatherAttributes...)
	return headers
}

// IsText reports whether column i holds text (date, unit and site ID) rather
// than a number.
func (s Schema) IsText(i int) bool {
	return i < 3
}

// Row renders a record in Headers order.
func (s Schema) Row(r MergedRecord) []string {
	row := make([]string, 0, 6+len(r.Labels)+len(r.Weather))
	row = append(row, core.FormatTimestamp(r.Timestamp), r.UnitID, r.SiteID, FormatFloat(r.Target))
	for _, v := range r.Labels {
		row = append(row, FormatFloat(v))
	}
	row = append(row, FormatFloat(r.Latitude), FormatFloat(r.Longitude))
	for _, v := range r.Weather {
		row = append(row, FormatFloat(v))
	}
	return row
}

// Rows renders every record.
func (s Schema) Rows(records []MergedRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = s.Row(r)
	}
	return rows
}

// FormatFloat renders v with the shortest exact representation.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
