package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/metro-commuter/internal/repo"
	"github.com/pkordes/metro-commuter/internal/service"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Show the line's station order",
	Long: `Show the canonical station order used to tell travel direction.
Falls back to FALLBACK_STATION_ORDER when no station has a position.`,
	Args: cobra.NoArgs,
	RunE: runStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	pool, cfg, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := service.NewItineraryService(repo.NewSegmentRepo(pool), repo.NewStationRepo(pool), cfg.FallbackStationOrder, service.DefaultFarePolicy(), cliLogger())

	order, err := svc.LineOrder(ctx)
	if err != nil {
		return fmt.Errorf("loading station order: %w", err)
	}
	return printStations(cmd.OutOrStdout(), order, jsonOutput)
}
