package dataset

import (
	"encoding/json"
	"fmt"
	"time"

	"solarprep/domain/core"
)

// DatasetStatus represents the processing state of a build run
type DatasetStatus string

const (
	StatusProcessing DatasetStatus = "processing"
	StatusReady      DatasetStatus = "ready"
	StatusFailed     DatasetStatus = "failed"
)

// BuildParams are the values that determine the content of a build.
type BuildParams struct {
	Target         string `json:"target"`
	Horizons       []int  `json:"horizons"`
	TestPeriodDays int    `json:"test_period_days"`
}

// Fingerprint hashes the parameters so that two runs over the same inputs with
// the same parameters can be recognised.
func (p BuildParams) Fingerprint() core.ConfigHash {
	data, _ := json.Marshal(p)
	return core.ConfigHash(core.NewHash(data))
}

// DirName is the output directory name used for this parameter set.
func (p BuildParams) DirName() string {
	days := ""
	for i, d := range p.Horizons {
		if i > 0 {
			days += "_"
		}
		days += fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("target_%s-day_%s-test_period_day_%d", p.Target, days, p.TestPeriodDays)
}

// KeyMapStats reports how raw site names were resolved.
type KeyMapStats struct {
	MappedRows    int      `json:"mapped_rows"`
	UnmappedRows  int      `json:"unmapped_rows"`
	UnmappedNames []string `json:"unmapped_names,omitempty"`
}

// JoinStats reports row counts around each merge step.
type JoinStats struct {
	LabeledRows       int `json:"labeled_rows"`
	UnmatchedSiteRows int `json:"unmatched_site_rows"`
	AfterSiteJoin     int `json:"after_site_join"`
	AfterWeatherJoin  int `json:"after_weather_join"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	FinalRows         int `json:"final_rows"`
}

// WeatherLoss is the number of rows dropped by the weather join.
func (s JoinStats) WeatherLoss() int {
	return s.AfterSiteJoin - s.AfterWeatherJoin
}

// MonthWindow is the trailing test window of one calendar month.
type MonthWindow struct {
	Month       string    `json:"month"` // YYYY-MM
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"` // exclusive
	TestSlots   int       `json:"test_slots"`
	TestRows    int       `json:"test_rows"`
}

// SplitStats reports the chronological partition.
type SplitStats struct {
	TrainRows int           `json:"train_rows"`
	TestRows  int           `json:"test_rows"`
	Months    []MonthWindow `json:"months"`
}

// ColumnProfile summarises one numeric output column.
type ColumnProfile struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	// Correlation with the target column; only set for label columns.
	Correlation *float64 `json:"correlation,omitempty"`
}

// RunSummary is the record written next to the train and test tables.
type RunSummary struct {
	RunID         core.RunID      `json:"run_id" db:"id"`
	Status        DatasetStatus   `json:"status" db:"status"`
	Params        BuildParams     `json:"params"`
	Fingerprint   core.ConfigHash `json:"fingerprint" db:"fingerprint"`
	ReadingRows   int             `json:"reading_rows" db:"reading_rows"`
	UnitCount     int             `json:"unit_count" db:"unit_count"`
	RepairedSlots int             `json:"repaired_slots" db:"repaired_slots"`
	LabeledRows   int             `json:"labeled_rows" db:"labeled_rows"`
	SiteCount     int             `json:"site_count" db:"site_count"`
	WeatherRows   int             `json:"weather_rows" db:"weather_rows"`
	KeyMap        KeyMapStats     `json:"key_map"`
	Join          JoinStats       `json:"join"`
	Split         SplitStats      `json:"split"`
	Profile       []ColumnProfile `json:"profile,omitempty"`
	Outputs       []string        `json:"outputs,omitempty"`
	ErrorMessage  string          `json:"error_message,omitempty" db:"error_message"`
	StartedAt     time.Time       `json:"started_at" db:"started_at"`
	FinishedAt    time.Time       `json:"finished_at" db:"finished_at"`
}

// NewRunSummary starts a summary for a fresh run.
func NewRunSummary(params BuildParams) *RunSummary {
	return &RunSummary{
		RunID:       core.NewRunID(),
		Status:      StatusProcessing,
		Params:      params,
		Fingerprint: params.Fingerprint(),
		StartedAt:   time.Now(),
	}
}

// Fail marks the run as failed.
func (s *RunSummary) Fail(err error) {
	s.Status = StatusFailed
	s.ErrorMessage = err.Error()
	s.FinishedAt = time.Now()
}

// Complete marks the run as ready.
func (s *RunSummary) Complete() {
	s.Status = StatusReady
	s.FinishedAt = time.Now()
}
