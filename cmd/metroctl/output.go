package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/metro-commuter/internal/domain"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	dim    = color.New(color.Faint)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printItineraries(w io.Writer, from, to string, options []domain.ItineraryOption, asJSON bool) error {
	if asJSON {
		if options == nil {
			options = []domain.ItineraryOption{}
		}
		return printJSON(w, options)
	}

	if len(options) == 0 {
		yellow.Fprintf(w, "No itineraries from %q to %q.\n", from, to)
		return nil
	}

	bold.Fprintf(w, "%s → %s\n\n", options[0].From, options[0].To)
	for i, o := range options {
		cyan.Fprintf(w, "  %d. ", i+1)
		bold.Fprintf(w, "%s", o.RunName)
		fmt.Fprintf(w, "  %s - %s", o.Departure, o.Arrival)
		green.Fprintf(w, "  %.2f", o.Price)
		if o.Frequency > 0 {
			dim.Fprintf(w, "  every %d min", o.Frequency)
		}
		dim.Fprintf(w, "  (%d %s)\n", len(o.SegmentIDs), plural(len(o.SegmentIDs), "segment"))
	}
	return nil
}

func printSegments(w io.Writer, segs []domain.Segment, page domain.PaginationParams, total int, asJSON bool) error {
	if asJSON {
		if segs == nil {
			segs = []domain.Segment{}
		}
		return printJSON(w, map[string]any{
			"data":       segs,
			"pagination": map[string]int{"page": page.Page, "limit": page.Limit, "total": total},
		})
	}

	if len(segs) == 0 {
		yellow.Fprintln(w, "No segments found.")
		return nil
	}

	for _, s := range segs {
		bold.Fprintf(w, "%-12s", s.RunName)
		fmt.Fprintf(w, " %s %s → %s %s", s.Departure, s.Source, s.Destination, s.Arrival)
		if s.Fare != nil {
			green.Fprintf(w, "  %.2f", *s.Fare)
		}
		fmt.Fprintln(w)
	}
	dim.Fprintf(w, "\npage %d · %d of %d %s\n", page.Page, len(segs), total, plural(total, "segment"))
	return nil
}

type migrationRow struct {
	Version  int64  `json:"version"`
	Source   string `json:"source"`
	Duration string `json:"duration,omitempty"`
	Applied  bool   `json:"applied"`
	Error    string `json:"error,omitempty"`
}

func printMigrations(w io.Writer, results []*goose.MigrationResult, asJSON bool) error {
	rows := make([]migrationRow, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		row := migrationRow{
			Version:  res.Source.Version,
			Source:   res.Source.Path,
			Duration: res.Duration.String(),
			Applied:  res.Error == nil && !res.Empty,
		}
		if res.Error != nil {
			row.Error = res.Error.Error()
		}
		rows = append(rows, row)
	}

	if asJSON {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		dim.Fprintln(w, "Database is up to date.")
		return nil
	}
	for _, row := range rows {
		if row.Error != "" {
			red.Fprintf(w, "  ✗ %05d %s: %s\n", row.Version, row.Source, row.Error)
			continue
		}
		green.Fprintf(w, "  ✓ %05d", row.Version)
		fmt.Fprintf(w, " %s", row.Source)
		dim.Fprintf(w, " (%s)\n", row.Duration)
	}
	return nil
}

func printMigrationStatus(w io.Writer, status []*goose.MigrationStatus, asJSON bool) error {
	rows := make([]migrationRow, 0, len(status))
	for _, st := range status {
		if st == nil || st.Source == nil {
			continue
		}
		rows = append(rows, migrationRow{
			Version: st.Source.Version,
			Source:  st.Source.Path,
			Applied: st.State == goose.StateApplied,
		})
	}

	if asJSON {
		return printJSON(w, rows)
	}
	for _, row := range rows {
		if row.Applied {
			green.Fprintf(w, "  applied ")
		} else {
			yellow.Fprintf(w, "  pending ")
		}
		fmt.Fprintf(w, "%05d %s\n", row.Version, row.Source)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func printStations(w io.Writer, names []string, asJSON bool) error {
	if asJSON {
		if names == nil {
			names = []string{}
		}
		return printJSON(w, names)
	}
	if len(names) == 0 {
		yellow.Fprintln(w, "No station order configured.")
		return nil
	}
	bold.Fprintln(w, strings.Join(names, " → "))
	return nil
}
