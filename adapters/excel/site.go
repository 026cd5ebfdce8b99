package excel

import (
	"strings"

	"solarprep/domain/dataset"
)

// RegionFromAddress derives the weather region from a street address: the
// second whitespace token with its administrative suffix (one character, such
// as 시 or 군) removed. Addresses with fewer than two tokens have no region.
func RegionFromAddress(addr string) string {
	fields := strings.Fields(addr)
	if len(fields) < 2 {
		return ""
	}
	token := []rune(fields[1])
	return string(token[:len(token)-1])
}

// ParseSiteTable converts the plant information file into the canonical site
// table. Empty coordinates read as zero.
func ParseSiteTable(source string, data *ExcelData, cols SiteColumns) (dataset.SiteTable, error) {
	if err := data.RequireColumns(source, cols.ID, cols.Name, cols.Address, cols.Latitude, cols.Longitude); err != nil {
		return dataset.SiteTable{}, err
	}

	table := dataset.SiteTable{Sites: make([]dataset.Site, 0, len(data.Rows))}
	for i, row := range data.Rows {
		lat, err := parseFloatOrZero(source, rowNumber(i), cols.Latitude, row[cols.Latitude])
		if err != nil {
			return dataset.SiteTable{}, err
		}
		lon, err := parseFloatOrZero(source, rowNumber(i), cols.Longitude, row[cols.Longitude])
		if err != nil {
			return dataset.SiteTable{}, err
		}
		table.Sites = append(table.Sites, dataset.Site{
			Name:      row[cols.Name],
			ID:        row[cols.ID],
			Region:    RegionFromAddress(row[cols.Address]),
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return table, nil
}
