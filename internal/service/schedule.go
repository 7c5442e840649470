package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
)

// ScheduleService maintains the station and segment dataset the itinerary
// search reads from.
type ScheduleService struct {
	stations repo.StationRepo
	segments repo.SegmentRepo
}

// NewScheduleService constructs a ScheduleService backed by the provided repos.
func NewScheduleService(stations repo.StationRepo, segments repo.SegmentRepo) *ScheduleService {
	return &ScheduleService{stations: stations, segments: segments}
}

// CreateStation validates and persists a station.
// Returns domain.ErrValidation for invalid input and domain.ErrConflict when
// the name is taken.
func (s *ScheduleService) CreateStation(ctx context.Context, st domain.Station) (domain.Station, error) {
	st.Name = strings.TrimSpace(st.Name)
	if err := validateStation(st); err != nil {
		return domain.Station{}, err
	}
	result, err := s.stations.Create(ctx, st)
	if err != nil {
		return domain.Station{}, fmt.Errorf("service.ScheduleService.CreateStation: %w", err)
	}
	return result, nil
}

// ListStations returns every station in line order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ScheduleService) ListStations(ctx context.Context) ([]domain.Station, error) {
	stations, err := s.stations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.ListStations: %w", err)
	}
	if stations == nil {
		return []domain.Station{}, nil
	}
	return stations, nil
}

// CreateSegment validates and persists one scheduled hop.
func (s *ScheduleService) CreateSegment(ctx context.Context, seg domain.Segment) (domain.Segment, error) {
	seg.RunName = strings.TrimSpace(seg.RunName)
	seg.Source = strings.TrimSpace(seg.Source)
	seg.Destination = strings.TrimSpace(seg.Destination)
	if err := validateSegment(seg); err != nil {
		return domain.Segment{}, err
	}
	result, err := s.segments.Create(ctx, seg)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("service.ScheduleService.CreateSegment: %w", err)
	}
	return result, nil
}

// validateStation enforces:
//   - Name must be non-empty.
//   - Latitude and longitude must be on the globe.
//   - Position, if set, starts at 1.
func validateStation(st domain.Station) error {
	if st.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if st.Latitude < -90 || st.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if st.Longitude < -180 || st.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	if st.Position != nil && *st.Position < 1 {
		return fmt.Errorf("%w: position must be at least 1", domain.ErrValidation)
	}
	return nil
}

func validateSegment(seg domain.Segment) error {
	switch {
	case seg.RunName == "":
		return fmt.Errorf("%w: run_name is required", domain.ErrValidation)
	case seg.Source == "" || seg.Destination == "":
		return fmt.Errorf("%w: source and destination are required", domain.ErrValidation)
	case strings.EqualFold(seg.Source, seg.Destination):
		return fmt.Errorf("%w: source and destination must differ", domain.ErrValidation)
	case !domain.ValidTimeOfDay(seg.Departure):
		return fmt.Errorf("%w: departure must be HH:MM", domain.ErrValidation)
	case !domain.ValidTimeOfDay(seg.Arrival):
		return fmt.Errorf("%w: arrival must be HH:MM", domain.ErrValidation)
	case seg.Fare != nil && *seg.Fare < 0:
		return fmt.Errorf("%w: fare must not be negative", domain.ErrValidation)
	case seg.Frequency < 0:
		return fmt.Errorf("%w: frequency must not be negative", domain.ErrValidation)
	}
	return nil
}
