package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/handler"
	"github.com/pkordes/metro-commuter/internal/service"
)

// mockSearcher is a test double for handler.ItinerarySearcher.
// Set only the method fields your test needs.
type mockSearcher struct {
	search         func(ctx context.Context, from, to string) ([]domain.ItineraryOption, error)
	searchSegments func(ctx context.Context, f domain.SegmentFilter, p domain.PaginationParams) ([]domain.Segment, int, error)
}

func (m *mockSearcher) Search(ctx context.Context, from, to string) ([]domain.ItineraryOption, error) {
	return m.search(ctx, from, to)
}
func (m *mockSearcher) SearchSegments(ctx context.Context, f domain.SegmentFilter, p domain.PaginationParams) ([]domain.Segment, int, error) {
	return m.searchSegments(ctx, f, p)
}

var _ handler.ItinerarySearcher = (*mockSearcher)(nil)

// mockSchedule is a test double for handler.ScheduleManager.
type mockSchedule struct {
	createStation func(ctx context.Context, st domain.Station) (domain.Station, error)
	listStations  func(ctx context.Context) ([]domain.Station, error)
	createSegment func(ctx context.Context, seg domain.Segment) (domain.Segment, error)
}

func (m *mockSchedule) CreateStation(ctx context.Context, st domain.Station) (domain.Station, error) {
	return m.createStation(ctx, st)
}
func (m *mockSchedule) ListStations(ctx context.Context) ([]domain.Station, error) {
	return m.listStations(ctx)
}
func (m *mockSchedule) CreateSegment(ctx context.Context, seg domain.Segment) (domain.Segment, error) {
	return m.createSegment(ctx, seg)
}

var _ handler.ScheduleManager = (*mockSchedule)(nil)

// mockTickets is a test double for handler.TicketSeller.
type mockTickets struct {
	purchase       func(ctx context.Context, req service.PurchaseRequest) (domain.Ticket, error)
	confirmPayment func(ctx context.Context, txID string, status domain.PaymentStatus, payload json.RawMessage) (domain.Ticket, error)
	getTicket      func(ctx context.Context, id uuid.UUID) (domain.Ticket, error)
	getRider       func(ctx context.Context, id uuid.UUID) (domain.Rider, error)
}

func (m *mockTickets) Purchase(ctx context.Context, req service.PurchaseRequest) (domain.Ticket, error) {
	return m.purchase(ctx, req)
}
func (m *mockTickets) ConfirmPayment(ctx context.Context, txID string, status domain.PaymentStatus, payload json.RawMessage) (domain.Ticket, error) {
	return m.confirmPayment(ctx, txID, status, payload)
}
func (m *mockTickets) GetTicket(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	return m.getTicket(ctx, id)
}
func (m *mockTickets) GetRider(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	return m.getRider(ctx, id)
}

var _ handler.TicketSeller = (*mockTickets)(nil)

// mockJourneys is a test double for handler.JourneyRecorder.
type mockJourneys struct {
	recordTap     func(ctx context.Context, id uuid.UUID) (domain.TapResult, error)
	recordTapByQR func(ctx context.Context, token string) (domain.TapResult, error)
}

func (m *mockJourneys) RecordTap(ctx context.Context, id uuid.UUID) (domain.TapResult, error) {
	return m.recordTap(ctx, id)
}
func (m *mockJourneys) RecordTapByQR(ctx context.Context, token string) (domain.TapResult, error) {
	return m.recordTapByQR(ctx, token)
}

var _ handler.JourneyRecorder = (*mockJourneys)(nil)

// ---- helpers ---------------------------------------------------------------

// serve wires srv into the router exactly as main.go does and runs one request.
func serve(srv *handler.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.Handler(srv).ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func postJSON(t *testing.T, path string, v any) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, jsonBody(t, v))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
