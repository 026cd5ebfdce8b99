package dataset

import (
	"database/sql"
	"time"
)

// Reading is one raw row of a plant generation log.
type Reading struct {
	Timestamp time.Time       // naive hourly timestamp
	UnitID    string          // inverter name, the series key
	SiteName  string          // raw plant name as written by the source; "" is a null cell
	Target    sql.NullFloat64 // generation value; Valid=false is a null cell
}

// Null reports whether any repairable cell of the reading is empty.
func (r Reading) Null() bool {
	return r.SiteName == "" || !r.Target.Valid
}

// AlignedSeries is one unit re-indexed onto a dense hourly timeline.
type AlignedSeries struct {
	UnitID      string
	Readings    []Reading // timestamp ascending, no null cells
	Synthesized int       // slots added by alignment
}

// Span returns the first and last timestamp of the series.
func (s AlignedSeries) Span() (time.Time, time.Time) {
	if len(s.Readings) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.Readings[0].Timestamp, s.Readings[len(s.Readings)-1].Timestamp
}

// LabeledRecord is an aligned row extended with one label per horizon.
//
// Site holds the raw plant name until the key mapper resolves it; afterwards it
// holds the canonical site ID (or the raw name when nothing matched).
type LabeledRecord struct {
	Timestamp time.Time
	UnitID    string
	Site      string
	Target    float64
	Labels    []float64 // same order as the configured horizons
}

// Site is one row of the canonical site table.
type Site struct {
	Name      string // name or name fragment used for substring matching
	ID        string
	Region    string // join key towards the weather table
	Latitude  float64
	Longitude float64
}

// SiteTable is the read-only canonical site metadata, in file order.
type SiteTable struct {
	Sites []Site
}

// ByID indexes the table by site ID. Duplicate IDs keep every row so that the
// join stays many-to-many like the source data.
func (t SiteTable) ByID() map[string][]Site {
	idx := make(map[string][]Site, len(t.Sites))
	for _, s := range t.Sites {
		idx[s.ID] = append(idx[s.ID], s)
	}
	return idx
}

// WeatherRecord is one hourly observation for a region.
type WeatherRecord struct {
	Timestamp time.Time
	Region    string // "" when the station has no region in the lookup
	Values    []sql.NullFloat64
}

// WeatherTable holds observations with a shared, ordered attribute schema.
type WeatherTable struct {
	Attributes []string
	Records    []WeatherRecord
}

// FillZero returns the attribute values with nulls replaced by zero.
func (r WeatherRecord) FillZero() []float64 {
	out := make([]float64, len(r.Values))
	for i, v := range r.Values {
		if v.Valid {
			out[i] = v.Float64
		}
	}
	return out
}

// MergedRecord is a labeled record joined with site metadata and weather.
type MergedRecord struct {
	Timestamp time.Time
	UnitID    string
	SiteID    string
	Target    float64
	Labels    []float64
	Latitude  float64
	Longitude float64
	Weather   []float64 // same order as WeatherTable.Attributes
}

// Split is the chronological train/test partition of the merged table.
type Split struct {
	Train []MergedRecord
	Test  []MergedRecord
}
