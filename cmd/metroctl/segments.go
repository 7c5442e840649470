package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
	"github.com/pkordes/metro-commuter/internal/service"
)

var (
	segmentsStation string
	segmentsTime    string
	segmentsPage    int
	segmentsLimit   int
)

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List scheduled segments",
	Long: `List raw schedule segments, optionally filtered by a station substring
and a departure time prefix.

Examples:
  metroctl segments --station majestic
  metroctl segments --time 08: --limit 50`,
	Args: cobra.NoArgs,
	RunE: runSegments,
}

func init() {
	segmentsCmd.Flags().StringVar(&segmentsStation, "station", "", "Substring of the source or destination")
	segmentsCmd.Flags().StringVar(&segmentsTime, "time", "", "Departure time prefix, e.g. 08 or 08:3")
	segmentsCmd.Flags().IntVar(&segmentsPage, "page", 1, "Page number")
	segmentsCmd.Flags().IntVar(&segmentsLimit, "limit", 20, "Results per page (max 100)")
	rootCmd.AddCommand(segmentsCmd)
}

func runSegments(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	pool, cfg, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := service.NewItineraryService(repo.NewSegmentRepo(pool), repo.NewStationRepo(pool), cfg.FallbackStationOrder, service.DefaultFarePolicy(), cliLogger())

	filter := domain.SegmentFilter{Station: segmentsStation, TimePrefix: segmentsTime}
	page := domain.NewPaginationParams(&segmentsPage, &segmentsLimit)

	segs, total, err := svc.SearchSegments(ctx, filter, page)
	if err != nil {
		return fmt.Errorf("listing segments: %w", err)
	}
	return printSegments(cmd.OutOrStdout(), segs, page, total, jsonOutput)
}
