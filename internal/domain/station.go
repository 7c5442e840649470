// Package domain contains the core data types for the metro commuter backend.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Station is a named stop on the metro network.
// Name is effectively unique; schedules reference stations by name.
// Position is the station's ordinal on the line and is nil when the operator
// has not supplied one.
type Station struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Position  *int      `json:"position,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
