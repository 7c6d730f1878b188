package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/vet-admin-api/internal/app"
	"github.com/jwalitptl/vet-admin-api/internal/config"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

var (
	configPath string
	timeout    time.Duration
	verbose    bool
)

// rootCmd is the clinic operations CLI
var rootCmd = &cobra.Command{
	Use:   "vetctl",
	Short: "Operate the veterinary clinic API",
	Long: `vetctl runs maintenance tasks against the clinic's storage.

Available commands:
  migrate   - Apply or roll back the PostgreSQL schema
  report    - Generate a report to a file
  inventory - Show low-stock and expiring items
  seed      - Print the demo data set`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: search . ./config /app/config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and a stderr logger for one command run.
func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, *config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	level := logger.WarnLevel
	if verbose {
		level = logger.DebugLevel
	}
	log := logger.NewLogger(&logger.Config{Level: level, Output: cmd.ErrOrStderr()})

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return ctx, cancel, cfg, log, nil
}

// openServices opens storage and builds the services for commands that read
// clinic data.
func openServices(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app.Infra, *app.Services, error) {
	infra, err := app.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return infra, app.NewServices(cfg, infra, log), nil
}
