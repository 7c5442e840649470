package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/qrtoken"
	"github.com/pkordes/metro-commuter/internal/repo"
)

// FinePolicy prices an overstay: every full minute past the grace period
// between the first and second tap costs PerMinute.
type FinePolicy struct {
	GraceMinutes float64
	PerMinute    int64
}

// DefaultFinePolicy returns a one minute grace period and 10 per minute.
func DefaultFinePolicy() FinePolicy {
	return FinePolicy{GraceMinutes: 1, PerMinute: 10}
}

// Fine returns the fine owed for a journey that took elapsed.
func (p FinePolicy) Fine(elapsed time.Duration) int64 {
	over := elapsed.Minutes() - p.GraceMinutes
	if over <= 0 {
		return 0
	}
	return int64(math.Floor(over)) * p.PerMinute
}

// TokenVerifier validates a QR payload and returns its claims.
// *qrtoken.Signer satisfies this interface.
type TokenVerifier interface {
	Parse(token string) (*qrtoken.Claims, error)
}

// JourneyService drives the tap state machine of a paid ticket:
// the first tap starts the journey, the second ends it and may fine the rider.
type JourneyService struct {
	tickets repo.TicketRepo
	tx      repo.TxRunner
	tokens  TokenVerifier
	fines   FinePolicy
	log     *slog.Logger
}

// NewJourneyService constructs a JourneyService. tickets serves reads; ending
// a journey and charging its fine go through tx as one unit.
func NewJourneyService(tickets repo.TicketRepo, tx repo.TxRunner, tokens TokenVerifier, fines FinePolicy, log *slog.Logger) *JourneyService {
	if log == nil {
		log = slog.Default()
	}
	return &JourneyService{
		tickets: tickets,
		tx:      tx,
		tokens:  tokens,
		fines:   fines,
		log:     log,
	}
}

// RecordTap applies one gate tap to the ticket.
//
// Returns domain.ErrNotFound for an unknown ticket, and domain.ErrConflict
// when the ticket is not paid, the journey is already completed, or a
// concurrent tap moved the ticket first. Completing the journey and charging
// the rider commit together: if the charge fails the ticket stays in
// journey and the error is returned, so a fine is charged exactly once.
func (s *JourneyService) RecordTap(ctx context.Context, ticketID uuid.UUID) (domain.TapResult, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return domain.TapResult{}, fmt.Errorf("service.JourneyService.RecordTap: %w", err)
	}
	if t.PaymentStatus != domain.PaymentPaid {
		return domain.TapResult{}, fmt.Errorf("%w: ticket payment is %s", domain.ErrConflict, t.PaymentStatus)
	}

	now := time.Now().UTC()

	switch t.JourneyState {
	case domain.JourneyUnscanned:
		if _, err := s.tickets.StartJourney(ctx, t.ID, now); err != nil {
			return domain.TapResult{}, fmt.Errorf("service.JourneyService.RecordTap: %w", err)
		}
		s.log.InfoContext(ctx, "journey started", "ticket_id", t.ID)
		return domain.TapResult{Event: domain.TapJourneyStarted, TicketID: t.ID}, nil

	case domain.JourneyInJourney:
		var elapsed time.Duration
		if t.ScannedInAt != nil {
			elapsed = now.Sub(*t.ScannedInAt)
		}
		fine := s.fines.Fine(elapsed)

		var done domain.Ticket
		err = s.tx.InTx(ctx, func(r repo.TxRepos) error {
			var err error
			if done, err = r.Tickets.CompleteJourney(ctx, t.ID, now, fine); err != nil {
				return err
			}
			if done.Fine == 0 {
				return nil
			}
			return s.chargeFine(ctx, r.Riders, done)
		})
		if err != nil {
			return domain.TapResult{}, fmt.Errorf("service.JourneyService.RecordTap: %w", err)
		}
		s.log.InfoContext(ctx, "journey ended", "ticket_id", t.ID, "fine", done.Fine)
		return domain.TapResult{Event: domain.TapJourneyEnded, TicketID: t.ID, Fine: done.Fine}, nil

	default:
		return domain.TapResult{}, fmt.Errorf("%w: journey already %s", domain.ErrConflict, t.JourneyState)
	}
}

// RecordTapByQR verifies a scanned QR payload and applies the tap to the
// ticket it names. An invalid or expired payload, or one whose rider does not
// own the ticket, is domain.ErrValidation.
func (s *JourneyService) RecordTapByQR(ctx context.Context, token string) (domain.TapResult, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.TapResult{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	t, err := s.tickets.GetByID(ctx, claims.TicketID)
	if err != nil {
		return domain.TapResult{}, fmt.Errorf("service.JourneyService.RecordTapByQR: %w", err)
	}
	if t.UserID != claims.UserID {
		return domain.TapResult{}, fmt.Errorf("%w: qr payload does not belong to ticket owner", domain.ErrValidation)
	}
	return s.RecordTap(ctx, t.ID)
}

// chargeFine adds the ticket's fine to its rider. A missing rider is
// tolerated: the ticket still records the fine.
func (s *JourneyService) chargeFine(ctx context.Context, riders repo.RiderRepo, t domain.Ticket) error {
	err := riders.IncrementFine(ctx, t.UserID, t.Fine)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.WarnContext(ctx, "fine not charged: rider missing", "ticket_id", t.ID, "user_id", t.UserID, "fine", t.Fine)
		return nil
	}
	if err != nil {
		return fmt.Errorf("charging fine: %w", err)
	}
	return nil
}
