package handler

import (
	"net/http"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// CreateStationRequest is the body of POST /stations.
type CreateStationRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Position  *int    `json:"position,omitempty"`
}

// CreateSegmentRequest is the body of POST /segments.
type CreateSegmentRequest struct {
	RunName     string   `json:"run_name"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Departure   string   `json:"departure"`
	Arrival     string   `json:"arrival"`
	Fare        *float64 `json:"fare,omitempty"`
	Frequency   int      `json:"frequency"`
}

// StationList is the body of GET /stations.
type StationList struct {
	Data []domain.Station `json:"data"`
}

// ListStations handles GET /stations.
func (s *Server) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.schedule.ListStations(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, StationList{Data: stations})
}

// CreateStation handles POST /stations.
func (s *Server) CreateStation(w http.ResponseWriter, r *http.Request) {
	var body CreateStationRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.schedule.CreateStation(r.Context(), domain.Station{
		Name:      body.Name,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Position:  body.Position,
	})
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CreateSegment handles POST /segments.
func (s *Server) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var body CreateSegmentRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.schedule.CreateSegment(r.Context(), domain.Segment{
		RunName:     body.RunName,
		Source:      body.Source,
		Destination: body.Destination,
		Departure:   body.Departure,
		Arrival:     body.Arrival,
		Fare:        body.Fare,
		Frequency:   body.Frequency,
	})
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
