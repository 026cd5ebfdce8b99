// Package parquet exports dataset tables as Parquet files.
package parquet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// Column describes one output column.
type Column struct {
	Name string
	Text bool // BYTE_ARRAY/UTF8 when true, DOUBLE otherwise
}

// Config holds the configuration for Writer.
type Config struct {
	// CompressionType is "SNAPPY", "GZIP" or "NONE".
	CompressionType string `yaml:"compression_type"`
	// Parallelism is the number of marshalling goroutines used by parquet-go.
	Parallelism int64 `yaml:"parallelism"`
}

// DefaultConfig returns snappy compression with four marshallers.
func DefaultConfig() Config {
	return Config{CompressionType: "SNAPPY", Parallelism: 4}
}

// Writer writes string rows as a typed Parquet file.
type Writer struct {
	codec       parquet.CompressionCodec
	parallelism int64
}

// NewWriter validates config and creates a Writer.
func NewWriter(config Config) (*Writer, error) {
	codec, err := getCompressionCodec(config.CompressionType)
	if err != nil {
		return nil, err
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 1
	}
	return &Writer{codec: codec, parallelism: config.Parallelism}, nil
}

// Write encodes rows into dst. Column names are reduced to identifier
// characters since parquet-go derives Go field names from them; the mapping is
// reported by FieldNames.
func (w *Writer) Write(dst io.Writer, columns []Column, rows [][]string) error {
	md := make([]string, len(columns))
	for i, c := range FieldNames(columns) {
		if columns[i].Text {
			md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY", c)
		} else {
			md[i] = fmt.Sprintf("name=%s, type=DOUBLE", c)
		}
	}

	pw, err := writer.NewCSVWriterFromWriter(md, dst, w.parallelism)
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	pw.CompressionType = w.codec

	var multiErr error
	for r, row := range rows {
		rec, convErr := record(columns, row)
		if convErr != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("row %d: %w", r, convErr))
			break
		}
		if writeErr := pw.Write(rec); writeErr != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("row %d: %w", r, writeErr))
			break
		}
	}

	// parquet-go panics on some malformed footers; surface that as an error.
	func() {
		defer func() {
			if p := recover(); p != nil {
				multiErr = multierror.Append(multiErr, fmt.Errorf("parquet writer panicked during WriteStop: %v", p))
			}
		}()
		if stopErr := pw.WriteStop(); stopErr != nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("failed to finalize Parquet file: %w", stopErr))
		}
	}()

	return multiErr
}

func record(columns []Column, row []string) ([]interface{}, error) {
	if len(row) != len(columns) {
		return nil, fmt.Errorf("expected %d cells, got %d", len(columns), len(row))
	}
	rec := make([]interface{}, len(row))
	for i, cell := range row {
		if columns[i].Text {
			rec[i] = cell
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", columns[i].Name, err)
		}
		rec[i] = v
	}
	return rec, nil
}

// FieldNames returns the Parquet field name of every column: characters other
// than letters and digits become underscores, a leading digit gets a prefix and
// collisions get the first numeric suffix no other column already uses.
func FieldNames(columns []Column) []string {
	names := make([]string, len(columns))
	used := make(map[string]bool)
	for i, c := range columns {
		var b strings.Builder
		for _, r := range c.Name {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		name := strings.Trim(b.String(), "_")
		if name == "" || unicode.IsDigit(rune(name[0])) {
			name = "c_" + name
		}
		if used[name] {
			base := name
			for n := 2; used[name]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// getCompressionCodec returns the Parquet compression codec from a string.
func getCompressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}
