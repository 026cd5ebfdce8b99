package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"solarprep/adapters/excel"
	"solarprep/adapters/parquet"
	"solarprep/adapters/stats/temporal"
	"solarprep/domain/core"
	"solarprep/internal/errors"

	"gopkg.in/yaml.v3"
)

// Output formats accepted for the train and test tables.
const (
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
	FormatParquet = "parquet"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig    `yaml:"-"`
	Paths    PathConfig        `yaml:"paths"`
	Build    BuildConfig       `yaml:"build"`
	Output   OutputConfig      `yaml:"output"`
	Parse    excel.ParseConfig `yaml:"parse"`
	Parquet  parquet.Config    `yaml:"parquet"`
	LogLevel string            `yaml:"log_level"`
}

// DatabaseConfig holds the optional run history database settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// Enabled reports whether run history is recorded.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// PathConfig holds input and output locations
type PathConfig struct {
	PlantDir   string `yaml:"plant_dir"`
	PlantInfo  string `yaml:"plant_info"`
	WeatherDir string `yaml:"weather_dir"`
	SaveDir    string `yaml:"save_dir"`
}

// BuildConfig holds the dataset parameters
type BuildConfig struct {
	Target         string `yaml:"target"`
	Horizons       []int  `yaml:"horizons"`
	TestPeriodDays int    `yaml:"test_period_days"`
	Workers        int    `yaml:"workers"`
}

// OutputConfig holds writer settings
type OutputConfig struct {
	Formats []string `yaml:"formats"`
}

// Default returns the layout and parameters of the original data drop.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{MaxOpenConns: 4},
		Paths: PathConfig{
			PlantDir:   "./data/plant_list",
			PlantInfo:  "./data/plant_info.csv",
			WeatherDir: "./data/weather",
			SaveDir:    "./preprocessed_data",
		},
		Build: BuildConfig{
			Target:         excel.DefaultTarget,
			Horizons:       []int{1, 7},
			TestPeriodDays: 3,
			Workers:        runtime.NumCPU(),
		},
		Output:   OutputConfig{Formats: []string{FormatCSV}},
		Parse:    excel.DefaultParseConfig(excel.DefaultTarget),
		Parquet:  parquet.DefaultConfig(),
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables, applies the YAML file
// named by SOLARPREP_CONFIG when set, and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("SOLARPREP_CONFIG"))
}

// LoadFrom is Load with an explicit YAML file; an empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	config, err := loadEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment configuration")
	}

	if path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadEnv() (*Config, error) {
	config := Default()

	config.Database.URL = os.Getenv("DATABASE_URL")
	config.Database.MaxOpenConns = getEnvIntOrDefault("DB_MAX_OPEN_CONNS", config.Database.MaxOpenConns)

	config.Paths.PlantDir = getEnvOrDefault("PLANT_DIR", config.Paths.PlantDir)
	config.Paths.PlantInfo = getEnvOrDefault("PLANT_INFO", config.Paths.PlantInfo)
	config.Paths.WeatherDir = getEnvOrDefault("WEATHER_DIR", config.Paths.WeatherDir)
	config.Paths.SaveDir = getEnvOrDefault("SAVE_DIR", config.Paths.SaveDir)

	config.Build.Target = getEnvOrDefault("TARGET", config.Build.Target)
	config.Build.TestPeriodDays = getEnvIntOrDefault("TEST_PERIOD_DAYS", config.Build.TestPeriodDays)
	config.Build.Workers = getEnvIntOrDefault("WORKERS", config.Build.Workers)
	if value := os.Getenv("HORIZONS"); value != "" {
		horizons, err := ParseHorizons(value)
		if err != nil {
			return nil, err
		}
		config.Build.Horizons = horizons
	}

	if value := os.Getenv("OUTPUT_FORMATS"); value != "" {
		config.Output.Formats = ParseList(value)
	}
	config.Parquet.CompressionType = getEnvOrDefault("PARQUET_COMPRESSION", config.Parquet.CompressionType)
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)

	return config, nil
}

// stationOverride detects an explicit station lookup in the file, which
// replaces the default lookup instead of being merged into it.
type stationOverride struct {
	Parse struct {
		Weather struct {
			StationRegions map[string]string `yaml:"station_regions"`
		} `yaml:"weather"`
	} `yaml:"parse"`
}

// LoadFile overlays the YAML file at path onto the configuration. Keys absent
// from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read config file %s: %w", path, err))
	}
	return c.Overlay(data)
}

// Overlay applies YAML document data onto the configuration.
func (c *Config) Overlay(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse config file: %w", err))
	}
	var override stationOverride
	if err := yaml.Unmarshal(data, &override); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse config file: %w", err))
	}
	if regions := override.Parse.Weather.StationRegions; regions != nil {
		c.Parse.Weather.StationRegions = regions
	}
	return nil
}

// ParseConfig returns the table layouts with the configured target column.
func (c *Config) ParseConfig() excel.ParseConfig {
	pc := c.Parse
	pc.Plant.Target = c.Build.Target
	return pc
}

// Validate checks every value the build depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Build.Target) == "" {
		return errors.ConfigInvalid("target column is required")
	}
	if err := temporal.ValidateHorizons(c.Build.Horizons); err != nil {
		return err
	}
	if c.Build.TestPeriodDays < 1 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidTestPeriod, c.Build.TestPeriodDays)
	}
	if c.Build.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	for _, p := range []struct{ name, value string }{
		{"plant directory", c.Paths.PlantDir},
		{"plant info file", c.Paths.PlantInfo},
		{"weather directory", c.Paths.WeatherDir},
		{"output directory", c.Paths.SaveDir},
	} {
		if p.value == "" {
			return errors.ConfigInvalid(p.name + " is required")
		}
	}

	if len(c.Output.Formats) == 0 {
		return errors.ConfigInvalid("at least one output format is required")
	}
	seen := make(map[string]bool, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		switch f {
		case FormatCSV, FormatXLSX:
		case FormatParquet:
			if _, err := parquet.NewWriter(c.Parquet); err != nil {
				return errors.WithCode(errors.CodeConfigInvalid, err)
			}
		default:
			return errors.ConfigInvalid(fmt.Sprintf("unsupported output format %q", f))
		}
		if seen[f] {
			return errors.ConfigInvalid(fmt.Sprintf("output format %q listed twice", f))
		}
		seen[f] = true
	}

	w := c.Parse.Weather
	if w.StationColumn == "" || w.TimeColumn == "" {
		return errors.ConfigInvalid("weather station and time columns are required")
	}
	if len(w.Columns) == 0 {
		return errors.ConfigInvalid("at least one weather column is required")
	}
	names := make(map[string]bool, len(w.Columns))
	for _, col := range w.Columns {
		if col.Source == "" || col.Name == "" {
			return errors.ConfigInvalid("weather column rename needs both source and name")
		}
		if names[col.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("weather attribute %q listed twice", col.Name))
		}
		names[col.Name] = true
	}
	return nil
}

// ParseHorizons accepts day counts separated by spaces or commas, e.g. "1 7".
func ParseHorizons(value string) ([]int, error) {
	fields := ParseList(value)
	horizons := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a day count", core.ErrInvalidHorizon, f)
		}
		horizons = append(horizons, d)
	}
	return horizons, nil
}

// ParseList splits a space or comma separated list, dropping empty items.
func ParseList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
