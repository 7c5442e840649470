package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/metro-commuter/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withProvider(cmd.Context(), func(ctx context.Context, p *goose.Provider) error {
			results, err := p.Up(ctx)
			if err != nil {
				return err
			}
			return printMigrations(cmd.OutOrStdout(), results, jsonOutput)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withProvider(cmd.Context(), func(ctx context.Context, p *goose.Provider) error {
			res, err := p.Down(ctx)
			if err != nil {
				return err
			}
			return printMigrations(cmd.OutOrStdout(), []*goose.MigrationResult{res}, jsonOutput)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withProvider(cmd.Context(), func(ctx context.Context, p *goose.Provider) error {
			status, err := p.Status(ctx)
			if err != nil {
				return err
			}
			return printMigrationStatus(cmd.OutOrStdout(), status, jsonOutput)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withProvider(ctx context.Context, fn func(context.Context, *goose.Provider) error) error {
	pool, _, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	return fn(ctx, provider)
}
