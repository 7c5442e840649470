package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/payment"
	"github.com/pkordes/metro-commuter/internal/repo"
)

// TokenSigner issues the QR payload of a paid ticket.
// *qrtoken.Signer satisfies this interface.
type TokenSigner interface {
	Sign(ticketID, userID uuid.UUID) (string, error)
}

// PurchaseRequest is a rider's order for one itinerary option.
type PurchaseRequest struct {
	UserID     uuid.UUID   `json:"user_id"`
	SegmentIDs []uuid.UUID `json:"segment_ids"`
}

// TicketService sells tickets and settles their payments.
type TicketService struct {
	tickets  repo.TicketRepo
	segments repo.SegmentRepo
	riders   repo.RiderRepo
	gateway  payment.Gateway
	signer   TokenSigner
	fares    FarePolicy
	log      *slog.Logger
}

// NewTicketService constructs a TicketService.
func NewTicketService(
	tickets repo.TicketRepo,
	segments repo.SegmentRepo,
	riders repo.RiderRepo,
	gateway payment.Gateway,
	signer TokenSigner,
	fares FarePolicy,
	log *slog.Logger,
) *TicketService {
	if log == nil {
		log = slog.Default()
	}
	return &TicketService{
		tickets:  tickets,
		segments: segments,
		riders:   riders,
		gateway:  gateway,
		signer:   signer,
		fares:    fares,
		log:      log,
	}
}

// Purchase creates a pending ticket for the given segments and opens a charge
// with the payment gateway. The segments must exist, be distinct, and form a
// contiguous stretch of one run's chain, in any order; the price is computed
// the same way the itinerary search prices them.
// If the gateway refuses the charge the ticket is marked failed.
func (s *TicketService) Purchase(ctx context.Context, req PurchaseRequest) (domain.Ticket, error) {
	if req.UserID == uuid.Nil {
		return domain.Ticket{}, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if len(req.SegmentIDs) == 0 {
		return domain.Ticket{}, fmt.Errorf("%w: segment_ids must not be empty", domain.ErrValidation)
	}
	if hasDuplicates(req.SegmentIDs) {
		return domain.Ticket{}, fmt.Errorf("%w: segment_ids must not repeat", domain.ErrValidation)
	}

	segs, err := s.segments.ListByIDs(ctx, req.SegmentIDs)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Ticket{}, fmt.Errorf("%w: unknown segment id", domain.ErrValidation)
	}
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.Purchase: %w", err)
	}
	run := segs[0].RunName
	if slices.ContainsFunc(segs, func(seg domain.Segment) bool { return seg.RunName != run }) {
		return domain.Ticket{}, fmt.Errorf("%w: segments must belong to one run", domain.ErrValidation)
	}
	sortChain(segs)

	chain, err := s.segments.List(ctx, run)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.Purchase: %w", err)
	}
	sortChain(chain)
	if !isChainSlice(chain, segs) {
		return domain.Ticket{}, fmt.Errorf("%w: segments must be consecutive stops of the run", domain.ErrValidation)
	}
	opt := buildOption(segs, s.fares)

	if err := s.riders.Ensure(ctx, req.UserID); err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.Purchase: %w", err)
	}

	t, err := s.tickets.Create(ctx, domain.Ticket{
		UserID:     req.UserID,
		SegmentIDs: opt.SegmentIDs,
		From:       opt.From,
		To:         opt.To,
		RunName:    opt.RunName,
		Amount:     opt.Price,
	})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.Purchase: %w", err)
	}

	charge, err := s.gateway.Initiate(ctx, payment.Checkout{
		TicketID:    t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Description: fmt.Sprintf("%s: %s to %s", t.RunName, t.From, t.To),
	})
	if err != nil {
		if _, serr := s.tickets.SettlePayment(ctx, t.ID, domain.PaymentFailed, nil, ""); serr != nil {
			s.log.ErrorContext(ctx, "marking ticket failed", "ticket_id", t.ID, "error", serr)
		}
		return domain.Ticket{}, fmt.Errorf("service.TicketService.Purchase: payment gateway: %w", err)
	}

	t, err = s.tickets.AttachPayment(ctx, t.ID, charge.TransactionID, charge.Payload)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.Purchase: %w", err)
	}
	s.log.InfoContext(ctx, "ticket created", "ticket_id", t.ID, "transaction_id", t.TransactionID, "amount", t.Amount)
	return t, nil
}

// ConfirmPayment settles the ticket that owns transaction txID with the
// gateway's reported status. A paid ticket receives its QR payload.
//
// Repeating a confirmation with the same status returns the ticket unchanged;
// a different status on a settled ticket is domain.ErrConflict.
func (s *TicketService) ConfirmPayment(ctx context.Context, txID string, status domain.PaymentStatus, payload json.RawMessage) (domain.Ticket, error) {
	if txID == "" {
		return domain.Ticket{}, fmt.Errorf("%w: transaction_id is required", domain.ErrValidation)
	}
	if !status.Valid() || status == domain.PaymentPending {
		return domain.Ticket{}, fmt.Errorf("%w: status must be paid, failed or cancelled", domain.ErrValidation)
	}

	t, err := s.tickets.GetByTransactionID(ctx, txID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.ConfirmPayment: %w", err)
	}
	if t.PaymentStatus != domain.PaymentPending {
		return settled(t, status)
	}

	var qr string
	if status == domain.PaymentPaid {
		if qr, err = s.signer.Sign(t.ID, t.UserID); err != nil {
			return domain.Ticket{}, fmt.Errorf("service.TicketService.ConfirmPayment: %w", err)
		}
	}

	updated, err := s.tickets.SettlePayment(ctx, t.ID, status, payload, qr)
	if errors.Is(err, domain.ErrConflict) {
		// Another confirmation won; report against what it stored.
		if t, err = s.tickets.GetByID(ctx, t.ID); err != nil {
			return domain.Ticket{}, fmt.Errorf("service.TicketService.ConfirmPayment: %w", err)
		}
		return settled(t, status)
	}
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.ConfirmPayment: %w", err)
	}
	s.log.InfoContext(ctx, "payment settled", "ticket_id", updated.ID, "status", updated.PaymentStatus)
	return updated, nil
}

// GetTicket returns a ticket by id. Returns domain.ErrNotFound if absent.
func (s *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("service.TicketService.GetTicket: %w", err)
	}
	return t, nil
}

// GetRider returns a rider's outstanding fine balance.
func (s *TicketService) GetRider(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	r, err := s.riders.GetByID(ctx, id)
	if err != nil {
		return domain.Rider{}, fmt.Errorf("service.TicketService.GetRider: %w", err)
	}
	return r, nil
}

func settled(t domain.Ticket, status domain.PaymentStatus) (domain.Ticket, error) {
	if t.PaymentStatus == status {
		return t, nil
	}
	return domain.Ticket{}, fmt.Errorf("%w: payment already %s", domain.ErrConflict, t.PaymentStatus)
}

func hasDuplicates(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// isChainSlice reports whether part, already in chain order, is a contiguous
// slice of chain.
func isChainSlice(chain, part []domain.Segment) bool {
	i := slices.IndexFunc(chain, func(seg domain.Segment) bool { return seg.ID == part[0].ID })
	if i < 0 || i+len(part) > len(chain) {
		return false
	}
	return slices.EqualFunc(chain[i:i+len(part)], part, func(a, b domain.Segment) bool { return a.ID == b.ID })
}
