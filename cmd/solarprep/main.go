package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solarprep/internal"
	"solarprep/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile, logLevel string

	rootCmd := &cobra.Command{
		Use:          "solarprep",
		Short:        "Build solar generation forecasting datasets from plant logs and weather observations",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file overriding table layouts and defaults (env SOLARPREP_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ERROR, WARN, INFO or DEBUG; overrides LOG_LEVEL and the config file")

	load := newLoader(&configFile, &logLevel)

	rootCmd.AddCommand(
		newBuildCmd(load),
		newGenerateCmd(),
		newHistoryCmd(load),
		newMigrateCmd(load),
	)
	return rootCmd
}

type loader func() (*config.Config, *internal.Logger, error)

// newLoader reads flag values at call time, after cobra has parsed them.
func newLoader(configFile, logLevel *string) loader {
	return func() (*config.Config, *internal.Logger, error) {
		path := *configFile
		if path == "" {
			path = os.Getenv("SOLARPREP_CONFIG")
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return nil, nil, err
		}
		logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
		if *logLevel != "" {
			cfg.LogLevel = *logLevel
			logger.SetLevel(internal.ParseLogLevel(*logLevel))
		}
		return cfg, logger, nil
	}
}
