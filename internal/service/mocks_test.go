package service_test

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
)

// memSegmentRepo is an in-memory repo.SegmentRepo holding segments in
// insertion order, which is what the search algorithm depends on.
type memSegmentRepo struct {
	segs  []domain.Segment
	calls int
	err   error
}

func newSegments(segs ...domain.Segment) *memSegmentRepo {
	for i := range segs {
		if segs[i].ID == uuid.Nil {
			segs[i].ID = uuid.New()
		}
	}
	return &memSegmentRepo{segs: segs}
}

func (m *memSegmentRepo) Create(_ context.Context, seg domain.Segment) (domain.Segment, error) {
	if m.err != nil {
		return domain.Segment{}, m.err
	}
	seg.ID = uuid.New()
	m.segs = append(m.segs, seg)
	return seg, nil
}

func (m *memSegmentRepo) List(_ context.Context, runName string) ([]domain.Segment, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Segment{}
	for _, s := range m.segs {
		if runName == "" || s.RunName == runName {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSegmentRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Segment, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, s := range m.segs {
			if s.ID == id {
				out = append(out, s)
				found = true
				break
			}
		}
		if !found {
			return nil, domain.ErrNotFound
		}
	}
	return out, nil
}

var _ repo.SegmentRepo = (*memSegmentRepo)(nil)

// mockStationRepo is a hand-written test double for repo.StationRepo.
// Each method is a function field; set only the ones your test needs.
type mockStationRepo struct {
	create func(ctx context.Context, st domain.Station) (domain.Station, error)
	list   func(ctx context.Context) ([]domain.Station, error)
}

func (m *mockStationRepo) Create(ctx context.Context, st domain.Station) (domain.Station, error) {
	return m.create(ctx, st)
}
func (m *mockStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	if m.list == nil {
		return nil, nil
	}
	return m.list(ctx)
}

var _ repo.StationRepo = (*mockStationRepo)(nil)

// memTicketRepo is an in-memory repo.TicketRepo whose transitions are
// compare-and-set under a mutex, mirroring the guarded SQL updates.
type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]domain.Ticket
}

func newTickets(ts ...domain.Ticket) *memTicketRepo {
	m := &memTicketRepo{tickets: map[uuid.UUID]domain.Ticket{}}
	for _, t := range ts {
		m.tickets[t.ID] = t
	}
	return m
}

func (m *memTicketRepo) Create(_ context.Context, t domain.Ticket) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.New()
	t.PaymentStatus = domain.PaymentPending
	t.JourneyState = domain.JourneyUnscanned
	m.tickets[t.ID] = t
	return t, nil
}

func (m *memTicketRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return domain.Ticket{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *memTicketRepo) GetByTransactionID(_ context.Context, txID string) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.TransactionID == txID {
			return t, nil
		}
	}
	return domain.Ticket{}, domain.ErrNotFound
}

func (m *memTicketRepo) AttachPayment(_ context.Context, id uuid.UUID, txID string, payload json.RawMessage) (domain.Ticket, error) {
	return m.transition(id, func(t domain.Ticket) bool { return t.PaymentStatus == domain.PaymentPending }, func(t *domain.Ticket) {
		t.TransactionID = txID
		t.GatewayPayload = payload
	})
}

func (m *memTicketRepo) SettlePayment(_ context.Context, id uuid.UUID, status domain.PaymentStatus, payload json.RawMessage, qr string) (domain.Ticket, error) {
	return m.transition(id, func(t domain.Ticket) bool { return t.PaymentStatus == domain.PaymentPending }, func(t *domain.Ticket) {
		t.PaymentStatus = status
		if len(payload) > 0 {
			t.GatewayPayload = payload
		}
		t.QRPayload = qr
	})
}

func (m *memTicketRepo) StartJourney(_ context.Context, id uuid.UUID, at time.Time) (domain.Ticket, error) {
	return m.transition(id, func(t domain.Ticket) bool { return t.JourneyState == domain.JourneyUnscanned }, func(t *domain.Ticket) {
		t.JourneyState = domain.JourneyInJourney
		t.ScannedInAt = &at
		t.LastScannedAt = &at
	})
}

func (m *memTicketRepo) CompleteJourney(_ context.Context, id uuid.UUID, at time.Time, fine int64) (domain.Ticket, error) {
	return m.transition(id, func(t domain.Ticket) bool { return t.JourneyState == domain.JourneyInJourney }, func(t *domain.Ticket) {
		t.JourneyState = domain.JourneyCompleted
		t.ScannedOutAt = &at
		t.LastScannedAt = &at
		t.Fine = fine
	})
}

func (m *memTicketRepo) transition(id uuid.UUID, guard func(domain.Ticket) bool, apply func(*domain.Ticket)) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || !guard(t) {
		return domain.Ticket{}, domain.ErrConflict
	}
	apply(&t)
	m.tickets[id] = t
	return t, nil
}

var _ repo.TicketRepo = (*memTicketRepo)(nil)

// memRiderRepo is an in-memory repo.RiderRepo.
type memRiderRepo struct {
	mu        sync.Mutex
	fines     map[uuid.UUID]int64
	ensure    error
	increment error // returned by IncrementFine while set
}

func newRiders(ids ...uuid.UUID) *memRiderRepo {
	m := &memRiderRepo{fines: map[uuid.UUID]int64{}}
	for _, id := range ids {
		m.fines[id] = 0
	}
	return m
}

func (m *memRiderRepo) Ensure(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensure != nil {
		return m.ensure
	}
	if _, ok := m.fines[id]; !ok {
		m.fines[id] = 0
	}
	return nil
}

func (m *memRiderRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Rider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fines[id]
	if !ok {
		return domain.Rider{}, domain.ErrNotFound
	}
	return domain.Rider{ID: id, OutstandingFine: f}, nil
}

func (m *memRiderRepo) IncrementFine(_ context.Context, id uuid.UUID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.increment != nil {
		return m.increment
	}
	if _, ok := m.fines[id]; !ok {
		return domain.ErrNotFound
	}
	m.fines[id] += amount
	return nil
}

func (m *memRiderRepo) fine(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fines[id]
}

var _ repo.RiderRepo = (*memRiderRepo)(nil)

// memTxRunner runs fn against the in-memory repos one transaction at a time
// and restores the ticket snapshot when fn fails, like a rollback. Rider
// writes are single calls, so only the failing call could have touched them.
type memTxRunner struct {
	mu      sync.Mutex
	tickets *memTicketRepo
	riders  *memRiderRepo
}

func newTxRunner(tickets *memTicketRepo, riders *memRiderRepo) *memTxRunner {
	return &memTxRunner{tickets: tickets, riders: riders}
}

func (r *memTxRunner) InTx(_ context.Context, fn func(repo.TxRepos) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickets.mu.Lock()
	snapshot := maps.Clone(r.tickets.tickets)
	r.tickets.mu.Unlock()

	err := fn(repo.TxRepos{Tickets: r.tickets, Riders: r.riders})
	if err != nil {
		r.tickets.mu.Lock()
		r.tickets.tickets = snapshot
		r.tickets.mu.Unlock()
	}
	return err
}
var _ repo.TxRunner = (*memTxRunner)(nil)
