package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"solarprep/domain/core"
	"solarprep/internal"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx", "xls", "csv" or "" when unsupported
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files.
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	fileType := ""
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv", ".tsv", ".txt":
		fileType = "csv"
	case ".xlsx", ".xlsm":
		fileType = "xlsx"
	case ".xls":
		fileType = "xls"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger.With("DataReader")}
}

// ReadData reads the file at the reader's path into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	if r.fileType == "" {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFile, r.filePath)
	}
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedInput, r.filePath, err)
	}
	defer f.Close()
	return r.ReadFrom(f)
}

// ReadFrom parses src using the format implied by the reader's path.
func (r *DataReader) ReadFrom(src io.Reader) (*ExcelData, error) {
	start := time.Now()
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows(src)
	case "xlsx":
		rows, err = r.readExcelRows(src)
	case "xls":
		rows, err = r.readXLSRows(src)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFile, r.filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedInput, r.filePath, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrMalformedInput, r.filePath)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return r.processRows(rows), nil
}

// readExcelRows reads the first worksheet with raw cell values, so numbers and
// date serials are not passed through the workbook's display formats.
func (r *DataReader) readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

// readXLSRows reads the first worksheet of a legacy BIFF workbook. Numbers come
// back in their shortest decimal form, so date serials reach parseTimestamp the
// same way as with RawCellValue above.
func (r *DataReader) readXLSRows(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, xlsRowCells(sheet, i))
	}
	if len(rows) == 1 && rows[0] == nil {
		return nil, nil
	}
	return rows, nil
}

// xlsRowCells returns nil for rows the sheet does not store. The library panics
// on those instead of reporting them.
func xlsRowCells(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()
	row := sheet.Row(i)
	if row == nil {
		return nil
	}
	cells = make([]string, row.LastCol())
	for c := row.FirstCol(); c < row.LastCol(); c++ {
		cells[c] = row.Col(c)
	}
	return cells
}

// readCSVRows reads comma separated data, falling back to tabs when the comma
// parse yields a single column.
func (r *DataReader) readCSVRows(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	rows, err := parseDelimited(data, ',')
	if err == nil && len(rows) > 0 && len(rows[0]) > 1 {
		return rows, nil
	}
	tabbed, tabErr := parseDelimited(data, '\t')
	if tabErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, tabErr
	}
	if len(tabbed) > 0 && len(tabbed[0]) > 1 {
		r.logger.Debug("%s is tab separated", r.filePath)
	}
	return tabbed, nil
}

func parseDelimited(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// processRows converts raw string rows into ExcelData format. Short rows are
// padded with empty cells.
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("%s processed (%d columns, %d rows)", r.filePath, len(headers), len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
