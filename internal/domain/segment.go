package domain

import (
	"time"

	"github.com/google/uuid"
)

// Segment is one scheduled hop of a train run between two named stops.
// Segments sharing a RunName form that run's chain once ordered by
// departure time and then ID.
type Segment struct {
	ID          uuid.UUID `json:"id"`
	RunName     string    `json:"run_name"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Departure   string    `json:"departure"` // "HH:MM", 24h
	Arrival     string    `json:"arrival"`   // "HH:MM", 24h
	Fare        *float64  `json:"fare,omitempty"`
	Frequency   int       `json:"frequency"` // minutes between repetitions, informational
	CreatedAt   time.Time `json:"created_at"`
}

// SegmentFilter selects raw segments for the direct listing path.
// Empty fields are not applied.
type SegmentFilter struct {
	// Station is matched case-insensitively as a substring of Source or Destination.
	Station string
	// TimePrefix must prefix the segment's Departure.
	TimePrefix string
}

// IsEmpty reports whether the filter would match every segment.
func (f SegmentFilter) IsEmpty() bool {
	return f.Station == "" && f.TimePrefix == ""
}

// ItineraryOption is a priced journey on a single run between a rider's
// requested stations. It is derived per search and never persisted.
type ItineraryOption struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	RunName    string      `json:"run_name"`
	Departure  string      `json:"departure"`
	Arrival    string      `json:"arrival"`
	Price      float64     `json:"price"`
	Frequency  int         `json:"frequency"`
	SegmentIDs []uuid.UUID `json:"segment_ids"`
}
