package main

import (
	"fmt"

	"solarprep/adapters/excel"
	"solarprep/adapters/parquet"
	"solarprep/app"
	"solarprep/domain/dataset"
	"solarprep/internal/config"
	pipeline "solarprep/internal/dataset"
	"solarprep/ports"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// buildFlags mirrors the values a command line may override.
type buildFlags struct {
	plantDir       string
	plantInfo      string
	weatherDir     string
	saveDir        string
	target         string
	horizons       []int
	testPeriodDays int
	formats        []string
	workers        int
}

func newBuildCmd(load loader) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Align plant logs, synthesize horizon labels, join weather and split train/test",
		Long: `Build a train/test dataset.

Every sub-directory of --plant-dir holds the reading files of one plant. Rows are
aligned to a complete hourly series per inverter, labeled with the target
--horizons days ahead, joined to the site table and the weather observations of
the site's region, and split per month: the last --test-period-days of each month
form the test set.

Example: solarprep build --target "Total Yield(kWh)" --horizons 1,7 --test-period-days 3 --formats csv,parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			if err := applyBuildFlags(cfg, cmd.Flags(), f); err != nil {
				return err
			}

			runs, closeDB, err := openRunRepository(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			writers, err := tableWriters(cfg)
			if err != nil {
				return err
			}
			service := app.NewDatasetBuildService(pipeline.NewLocalFileStorageWithPath(cfg.Paths.SaveDir), writers, runs, logger)

			result, err := service.Build(cmd.Context(), app.BuildRequest{
				PlantDir:   cfg.Paths.PlantDir,
				PlantInfo:  cfg.Paths.PlantInfo,
				WeatherDir: cfg.Paths.WeatherDir,
				Params: dataset.BuildParams{
					Target:         cfg.Build.Target,
					Horizons:       cfg.Build.Horizons,
					TestPeriodDays: cfg.Build.TestPeriodDays,
				},
				Parse:   cfg.ParseConfig(),
				Workers: cfg.Build.Workers,
			})
			if err != nil {
				return err
			}

			s := result.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: train %d rows, test %d rows, %d gaps repaired, %d unmapped site names\n",
				s.RunID, s.Split.TrainRows, s.Split.TestRows, s.RepairedSlots, len(s.KeyMap.UnmappedNames))
			fmt.Fprintln(cmd.OutOrStdout(), result.OutputDir)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.plantDir, "plant-dir", "", "directory with one sub-directory of reading files per plant (default ./data/plant_list)")
	fs.StringVar(&f.plantInfo, "plant-info", "", "site table file (default ./data/plant_info.csv)")
	fs.StringVar(&f.weatherDir, "weather-dir", "", "directory of weather observation files (default ./data/weather)")
	fs.StringVar(&f.saveDir, "savedir", "", "output root directory (default ./preprocessed_data)")
	fs.StringVar(&f.target, "target", "", "target column (default \"Total Yield(kWh)\")")
	fs.IntSliceVar(&f.horizons, "horizons", nil, "label horizons in days (default 1,7)")
	fs.IntVar(&f.testPeriodDays, "test-period-days", 0, "trailing days of each month assigned to test (default 3)")
	fs.StringSliceVar(&f.formats, "formats", nil, "output formats: csv, xlsx, parquet (default csv)")
	fs.IntVar(&f.workers, "workers", 0, "concurrent inverters per plant (default number of CPUs)")
	return cmd
}

// applyBuildFlags overrides configuration with the flags set on the command
// line and validates the result.
func applyBuildFlags(cfg *config.Config, fs *pflag.FlagSet, f buildFlags) error {
	if fs.Changed("plant-dir") {
		cfg.Paths.PlantDir = f.plantDir
	}
	if fs.Changed("plant-info") {
		cfg.Paths.PlantInfo = f.plantInfo
	}
	if fs.Changed("weather-dir") {
		cfg.Paths.WeatherDir = f.weatherDir
	}
	if fs.Changed("savedir") {
		cfg.Paths.SaveDir = f.saveDir
	}
	if fs.Changed("target") {
		cfg.Build.Target = f.target
	}
	if fs.Changed("horizons") {
		cfg.Build.Horizons = f.horizons
	}
	if fs.Changed("test-period-days") {
		cfg.Build.TestPeriodDays = f.testPeriodDays
	}
	if fs.Changed("formats") {
		cfg.Output.Formats = f.formats
	}
	if fs.Changed("workers") {
		cfg.Build.Workers = f.workers
	}
	return cfg.Validate()
}

func tableWriters(cfg *config.Config) ([]ports.TableWriter, error) {
	writers := make([]ports.TableWriter, 0, len(cfg.Output.Formats))
	for _, format := range cfg.Output.Formats {
		switch format {
		case config.FormatCSV:
			writers = append(writers, excel.CSVTableWriter{})
		case config.FormatXLSX:
			writers = append(writers, excel.XLSXTableWriter{})
		case config.FormatParquet:
			w, err := parquet.NewTableWriter(cfg.Parquet)
			if err != nil {
				return nil, err
			}
			writers = append(writers, w)
		default:
			return nil, fmt.Errorf("unsupported output format %q", format)
		}
	}
	return writers, nil
}
