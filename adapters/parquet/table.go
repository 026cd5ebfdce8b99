package parquet

import (
	"io"

	"solarprep/domain/dataset"
)

// TableWriter writes dataset tables as Parquet.
type TableWriter struct {
	writer *Writer
}

// NewTableWriter creates a TableWriter with the given compression settings.
func NewTableWriter(config Config) (*TableWriter, error) {
	w, err := NewWriter(config)
	if err != nil {
		return nil, err
	}
	return &TableWriter{writer: w}, nil
}

func (t *TableWriter) Format() string { return "parquet" }

// Write stores the date, unit and site columns as text and the rest as doubles.
func (t *TableWriter) Write(dst io.Writer, schema dataset.Schema, records []dataset.MergedRecord) error {
	headers := schema.Headers()
	columns := make([]Column, len(headers))
	for i, h := range headers {
		columns[i] = Column{Name: h, Text: schema.IsText(i)}
	}
	return t.writer.Write(dst, columns, schema.Rows(records))
}
