// Package handler implements the HTTP handlers for the metro commuter API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (search.go, ticket.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/service"
)

// ItinerarySearcher defines the search operations the search handler depends on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type ItinerarySearcher interface {
	Search(ctx context.Context, from, to string) ([]domain.ItineraryOption, error)
	SearchSegments(ctx context.Context, f domain.SegmentFilter, p domain.PaginationParams) ([]domain.Segment, int, error)
}

// ScheduleManager defines the station and segment administration operations.
type ScheduleManager interface {
	CreateStation(ctx context.Context, st domain.Station) (domain.Station, error)
	ListStations(ctx context.Context) ([]domain.Station, error)
	CreateSegment(ctx context.Context, seg domain.Segment) (domain.Segment, error)
}

// TicketSeller defines the ticket, payment and rider operations.
type TicketSeller interface {
	Purchase(ctx context.Context, req service.PurchaseRequest) (domain.Ticket, error)
	ConfirmPayment(ctx context.Context, txID string, status domain.PaymentStatus, payload json.RawMessage) (domain.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
	GetRider(ctx context.Context, id uuid.UUID) (domain.Rider, error)
}

// JourneyRecorder defines the gate tap operations.
type JourneyRecorder interface {
	RecordTap(ctx context.Context, ticketID uuid.UUID) (domain.TapResult, error)
	RecordTapByQR(ctx context.Context, token string) (domain.TapResult, error)
}

// Server holds the dependencies shared by every handler.
// Any dependency may be nil when a test only exercises part of the API.
type Server struct {
	search   ItinerarySearcher
	schedule ScheduleManager
	tickets  TicketSeller
	journeys JourneyRecorder
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(search ItinerarySearcher, schedule ScheduleManager, tickets TicketSeller, journeys JourneyRecorder, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		search:   search,
		schedule: schedule,
		tickets:  tickets,
		journeys: journeys,
		log:      log,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/stations", s.ListStations)
	r.Post("/stations", s.CreateStation)
	r.Post("/segments", s.CreateSegment)

	r.Get("/search", s.Search)

	r.Post("/tickets", s.PurchaseTicket)
	r.Get("/tickets/{id}", s.GetTicket)
	r.Post("/tickets/{id}/tap", s.TapTicket)
	r.Post("/taps", s.TapQR)
	r.Post("/payments/confirm", s.ConfirmPayment)

	r.Get("/riders/{id}", s.GetRider)
}

// Handler returns a chi router serving every endpoint of s.
// main.go mounts it beneath the global middleware stack.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
