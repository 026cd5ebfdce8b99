package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"solarprep/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Sheet1"

// WriteCSV writes a header row followed by rows.
func WriteCSV(dst io.Writer, headers []string, rows [][]string) error {
	w := csv.NewWriter(dst)

	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes a single-sheet workbook. Cells that parse as numbers are
// stored as numbers.
func WriteXLSX(dst io.Writer, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range rows {
		values := make([]interface{}, len(row))
		for c, cell := range row {
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				values[c] = v
			} else {
				values[c] = cell
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, values); err != nil {
			return fmt.Errorf("row %d: %w", r+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(dst)
	return err
}

// CSVTableWriter writes dataset tables as CSV.
type CSVTableWriter struct{}

func (CSVTableWriter) Format() string { return "csv" }

func (CSVTableWriter) Write(dst io.Writer, schema dataset.Schema, records []dataset.MergedRecord) error {
	return WriteCSV(dst, schema.Headers(), schema.Rows(records))
}

// XLSXTableWriter writes dataset tables as single-sheet workbooks.
type XLSXTableWriter struct{}

func (XLSXTableWriter) Format() string { return "xlsx" }

func (XLSXTableWriter) Write(dst io.Writer, schema dataset.Schema, records []dataset.MergedRecord) error {
	return WriteXLSX(dst, schema.Headers(), schema.Rows(records))
}
