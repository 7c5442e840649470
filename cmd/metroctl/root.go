package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/metro-commuter/internal/config"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "metroctl",
	Short: "Metro commuter operator CLI",
	Long: `metroctl manages the metro commuter database and queries the schedule.

Configuration is read from the same environment variables (and .env file)
as the API server; only DATABASE_URL is required.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// connect loads configuration and opens a verified connection pool.
// The caller closes the pool.
func connect(ctx context.Context) (*pgxpool.Pool, config.Config, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, config.Config{}, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("opening database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, config.Config{}, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, cfg, nil
}

// cliLogger writes warnings to stderr so they never mix with command output.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
