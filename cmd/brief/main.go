package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studybrief/brief/cmd/brief/internal/config"
	"github.com/studybrief/brief/cmd/brief/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "brief",
		Short:        "Brief - API service",
		Long:         `Brief serves the Brief API. It refuses to start unless its MongoDB deployment answers a ping.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: /etc/brief.yaml)")

	rootCmd.AddCommand(&cobra.Command{
		Use:          "serve",
		Short:        "Connect to the database and start the HTTP server",
		SilenceUsage: true,
		RunE:         runServe,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:          "dbcheck",
		Short:        "Connect to the database, ping it and exit",
		SilenceUsage: true,
		RunE:         runDBCheck,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("brief %s (api %s, commit: %s, built: %s)\n", version, config.Version(), commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	defer logger.Close()

	logConfigSummary(logger, cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.ConnectTimeoutDuration())
	driver := connectDatabase(ctx, cfg, logger, os.Exit)
	cancel()

	if err := serve(cmd.Context(), cfg, logger, driver); err != nil {
		logger.ErrorWithErr("Server error", err)
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	defer logger.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.ConnectTimeoutDuration())
	defer cancel()

	driver := connectDatabase(ctx, cfg, logger, os.Exit)
	if driver == nil {
		return fmt.Errorf("database bootstrap failed")
	}
	return driver.Close(ctx)
}

// setup loads the configuration and initializes logging. Any failure here
// exits with status 1 before the database is touched.
func setup() (*config.AppConfig, *logging.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := runPreflightChecks(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Preflight checks failed: %v\n", err)
		os.Exit(1)
	}

	logging.Init(loggerConfig(cfg))
	return cfg, logging.GetLogger()
}
