package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"solarprep/adapters/postgres"
	"solarprep/domain/core"
	"solarprep/internal/migration"

	"github.com/spf13/cobra"
)

func newHistoryCmd(load loader) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent builds, or show the summary of one build",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			repo := postgres.NewRunRepository(db)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := core.ParseRunID(args[0])
				if err != nil {
					return err
				}
				run, err := repo.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "run:         %s\n", run.RunID)
				fmt.Fprintf(out, "status:      %s\n", run.Status)
				fmt.Fprintf(out, "directory:   %s\n", run.Params.DirName())
				fmt.Fprintf(out, "readings:    %d (%d units, %d gaps repaired)\n", run.ReadingRows, run.UnitCount, run.RepairedSlots)
				fmt.Fprintf(out, "joins:       %d labeled, %d after weather, %d final\n", run.Join.LabeledRows, run.Join.AfterWeatherJoin, run.Join.FinalRows)
				fmt.Fprintf(out, "split:       %d train, %d test\n", run.Split.TrainRows, run.Split.TestRows)
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "error:       %s\n", run.ErrorMessage)
				}
				return nil
			}

			runs, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTATUS\tSTARTED\tTRAIN\tTEST\tPARAMETERS")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					r.RunID, r.Status, r.StartedAt.Format(time.DateTime), r.Split.TrainRows, r.Split.TestRows, r.Params.DirName())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the run history schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %s\n", migration.NewRunner().Version())
			return nil
		},
	}
}
