package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/metro-commuter/internal/repo"
	"github.com/pkordes/metro-commuter/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <from> <to>",
	Short: "Find itinerary options between two stations",
	Long: `Resolve itinerary options between two stations, one per run.
Station names match case-insensitively and by substring.

Examples:
  metroctl search Majestic "MG Road"
  metroctl search whitefield majestic --json`,
	Aliases: []string{"s"},
	Args:    cobra.ExactArgs(2),
	RunE:    runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pool, cfg, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	fares := service.FarePolicy{
		RatePerMinute:       cfg.Fare.RatePerMinute,
		Minimum:             cfg.Fare.Minimum,
		ZeroDurationMinutes: cfg.Fare.ZeroDurationMinutes,
	}
	svc := service.NewItineraryService(repo.NewSegmentRepo(pool), repo.NewStationRepo(pool), cfg.FallbackStationOrder, fares, cliLogger())

	options, err := svc.Search(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("searching itineraries: %w", err)
	}
	return printItineraries(cmd.OutOrStdout(), args[0], args[1], options, jsonOutput)
}
