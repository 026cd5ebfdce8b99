package main

import (
	"fmt"
	"time"

	"solarprep/internal/testkit"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultConfig()
	var out, start string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic plant_list/plant_info/weather tree for trying the build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return fmt.Errorf("invalid --start (use YYYY-MM-DD): %w", err)
			}
			cfg.Start = t

			ds, err := testkit.Generate(cfg)
			if err != nil {
				return err
			}
			paths, err := testkit.WriteTree(out, ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plant logs:  %s\nsite table:  %s\nweather:     %s\n",
				paths.PlantDir, paths.PlantInfo, paths.WeatherDir)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&out, "out", "./data", "output directory")
	fs.StringVar(&start, "start", "2021-03-01", "first day")
	fs.IntVar(&cfg.Hours, "hours", cfg.Hours, "hours per inverter")
	fs.IntVar(&cfg.Plants, "plants", cfg.Plants, "number of plants")
	fs.IntVar(&cfg.UnitsPerPlant, "units", cfg.UnitsPerPlant, "inverters per plant")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.StringVar(&cfg.PlantFormat, "plant-format", cfg.PlantFormat, "plant log format: csv or xlsx")
	return cmd
}
