package excel

import (
	"solarprep/domain/core"
)

// RawRowData represents a row of raw data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete tabular dataset read from one file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether name is one of the headers.
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// RequireColumns fails with a missing-column error naming the first absent column.
func (d *ExcelData) RequireColumns(source string, columns ...string) error {
	for _, c := range columns {
		if !d.HasColumn(c) {
			return core.NewMissingColumnError(source, c)
		}
	}
	return nil
}
