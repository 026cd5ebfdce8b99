package ports

import (
	"io"

	"solarprep/domain/dataset"
)

// TableWriter encodes one output table in a single file format
type TableWriter interface {
	// Format is the file extension without the dot, e.g. "csv".
	Format() string
	Write(dst io.Writer, schema dataset.Schema, records []dataset.MergedRecord) error
}
