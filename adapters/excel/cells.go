package excel

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"solarprep/domain/core"

	"github.com/xuri/excelize/v2"
)

// parseTimestamp accepts the textual layouts of core.ParseNaiveTimestamp and
// Excel date serials as stored in raw xlsx cells.
func parseTimestamp(cell string) (time.Time, error) {
	if t, err := core.ParseNaiveTimestamp(cell); err == nil {
		return t, nil
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, core.ErrBadTimestamp
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, core.ErrBadTimestamp
	}
	t = t.Round(time.Second)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// parseHourlyTimestamp is parseTimestamp restricted to the hourly grid.
func parseHourlyTimestamp(source string, row int, column, cell string) (time.Time, error) {
	t, err := parseTimestamp(cell)
	if err != nil {
		return time.Time{}, core.NewCellError(core.ErrBadTimestamp, source, row, column, cell)
	}
	if !core.IsOnHourGrid(t) {
		return time.Time{}, core.NewCellError(core.ErrOffGridTime, source, row, column, cell)
	}
	return t, nil
}

var nullTokens = map[string]bool{
	"":    true,
	"nan": true,
	"NaN": true,
	"NA":  true,
	"N/A": true,
	"-":   true,
}

// parseNullableFloat returns an invalid NullFloat64 for empty cells and fails
// on anything else that is not a number.
func parseNullableFloat(source string, row int, column, cell string) (sql.NullFloat64, error) {
	cell = strings.TrimSpace(cell)
	if nullTokens[cell] {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return sql.NullFloat64{}, core.NewCellError(core.ErrBadNumber, source, row, column, cell)
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

// parseFloatOrZero is parseNullableFloat with nulls read as zero.
func parseFloatOrZero(source string, row int, column, cell string) (float64, error) {
	v, err := parseNullableFloat(source, row, column, cell)
	if err != nil {
		return 0, err
	}
	return v.Float64, nil
}

// rowNumber is the 1-based file line of data row i (the header is line 1).
func rowNumber(i int) int {
	return i + 2
}
