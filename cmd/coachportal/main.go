// Package main provides the coachportal server and its maintenance commands.
package main

import (
	"fmt"
	"log"
	"os"

	"coach-portal/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// LogConfig selects the logging backend
type LogConfig struct {
	Backend string `env:"LOG_BACKEND" envDefault:"logrus"`
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	Format  string `env:"LOG_FORMAT"`
}

var appLogger logger.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coachportal",
	Short: "Coach portal backend",
	Long: `coachportal serves the coach/athlete portal API: the generic collection
resource, notifications, the reminder sweep, uploads and the change feed.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// setup loads .env and builds the process logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logCfg := &LogConfig{}
	if err := env.Parse(logCfg); err != nil {
		return fmt.Errorf("failed to load log configuration: %w", err)
	}
	appLogger = logger.New(logCfg.Backend, logCfg.Level, logCfg.Format)
	return nil
}
