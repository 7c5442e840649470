package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// TicketRepo defines the persistence operations for Tickets.
//
// The state-changing methods are compare-and-set updates: each one only
// applies when the ticket is still in the state the transition starts from,
// and returns domain.ErrConflict otherwise. Callers are expected to have read
// the ticket first, so a missing row surfaces as a conflict, not a 404.
type TicketRepo interface {
	// Create inserts a pending, unscanned ticket and returns the persisted record.
	Create(ctx context.Context, t domain.Ticket) (domain.Ticket, error)

	// GetByID retrieves a ticket by primary key.
	// Returns domain.ErrNotFound if no ticket with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error)

	// GetByTransactionID retrieves the ticket a payment transaction belongs to.
	// Returns domain.ErrNotFound if no ticket carries that transaction id.
	GetByTransactionID(ctx context.Context, txID string) (domain.Ticket, error)

	// AttachPayment stores the gateway transaction id and initiation payload
	// on a pending ticket.
	AttachPayment(ctx context.Context, id uuid.UUID, txID string, payload json.RawMessage) (domain.Ticket, error)

	// SettlePayment moves a pending ticket to status. qrPayload is stored as
	// given and should only be non-empty for domain.PaymentPaid.
	SettlePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, payload json.RawMessage, qrPayload string) (domain.Ticket, error)

	// StartJourney records the first tap on an unscanned ticket.
	StartJourney(ctx context.Context, id uuid.UUID, at time.Time) (domain.Ticket, error)

	// CompleteJourney records the second tap and the computed fine on a
	// ticket that is in journey. At most one caller can succeed per ticket.
	CompleteJourney(ctx context.Context, id uuid.UUID, at time.Time, fine int64) (domain.Ticket, error)
}

// pgTicketRepo is the Postgres implementation of TicketRepo.
type pgTicketRepo struct {
	db db
}

// NewTicketRepo constructs a TicketRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTicketRepo(db db) TicketRepo {
	return &pgTicketRepo{db: db}
}

const ticketColumns = `
	id, user_id, segment_ids::text[], from_station, to_station, run_name,
	payment_status, COALESCE(transaction_id, ''), amount::float8, gateway_payload,
	COALESCE(qr_payload, ''), journey_state, scanned_in_at, last_scanned_at,
	scanned_out_at, fine, created_at, updated_at`

func (r *pgTicketRepo) Create(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	const q = `
		INSERT INTO tickets (user_id, segment_ids, from_station, to_station, run_name, amount)
		VALUES (@user_id, @segment_ids::uuid[], @from, @to, @run_name, @amount)
		RETURNING ` + ticketColumns

	args := pgx.NamedArgs{
		"user_id":     t.UserID,
		"segment_ids": uuidStrings(t.SegmentIDs),
		"from":        t.From,
		"to":          t.To,
		"run_name":    t.RunName,
		"amount":      t.Amount,
	}

	result, err := scanTicket(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTicketRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = @id`

	result, err := scanTicket(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTicketRepo) GetByTransactionID(ctx context.Context, txID string) (domain.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE transaction_id = @tx`

	result, err := scanTicket(r.db.QueryRow(ctx, q, pgx.NamedArgs{"tx": txID}))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.GetByTransactionID: %w", err)
	}
	return result, nil
}

func (r *pgTicketRepo) AttachPayment(ctx context.Context, id uuid.UUID, txID string, payload json.RawMessage) (domain.Ticket, error) {
	const q = `
		UPDATE tickets
		SET transaction_id  = @tx,
		    gateway_payload = @payload,
		    updated_at      = now()
		WHERE id = @id AND payment_status = 'pending'
		RETURNING ` + ticketColumns

	args := pgx.NamedArgs{"id": id, "tx": txID, "payload": nullableJSON(payload)}
	result, err := r.transition(ctx, q, args)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.AttachPayment: %w", err)
	}
	return result, nil
}

func (r *pgTicketRepo) SettlePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, payload json.RawMessage, qrPayload string) (domain.Ticket, error) {
	const q = `
		UPDATE tickets
		SET payment_status  = @status,
		    gateway_payload = COALESCE(@payload, gateway_payload),
		    qr_payload      = NULLIF(@qr, ''),
		    updated_at      = now()
		WHERE id = @id AND payment_status = 'pending'
		RETURNING ` + ticketColumns

	args := pgx.NamedArgs{
		"id":      id,
		"status":  string(status),
		"payload": nullableJSON(payload),
		"qr":      qrPayload,
	}
	result, err := r.transition(ctx, q, args)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.SettlePayment: %w", err)
	}
	return result, nil
}

func (r *pgTicketRepo) StartJourney(ctx context.Context, id uuid.UUID, at time.Time) (domain.Ticket, error) {
	const q = `
		UPDATE tickets
		SET journey_state   = 'in_journey',
		    scanned_in_at   = @at,
		    last_scanned_at = @at,
		    updated_at      = now()
		WHERE id = @id AND journey_state = 'unscanned'
		RETURNING ` + ticketColumns

	result, err := r.transition(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.StartJourney: %w", err)
	}
	return result, nil
}

func (r *pgTicketRepo) CompleteJourney(ctx context.Context, id uuid.UUID, at time.Time, fine int64) (domain.Ticket, error) {
	const q = `
		UPDATE tickets
		SET journey_state   = 'completed',
		    scanned_out_at  = @at,
		    last_scanned_at = @at,
		    fine            = @fine,
		    updated_at      = now()
		WHERE id = @id AND journey_state = 'in_journey'
		RETURNING ` + ticketColumns

	result, err := r.transition(ctx, q, pgx.NamedArgs{"id": id, "at": at, "fine": fine})
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("repo.TicketRepo.CompleteJourney: %w", err)
	}
	return result, nil
}

// transition runs a guarded UPDATE ... RETURNING. No returned row means the
// guard did not hold, which is reported as domain.ErrConflict.
func (r *pgTicketRepo) transition(ctx context.Context, q string, args pgx.NamedArgs) (domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Ticket{}, domain.ErrConflict
	}
	return t, err
}

// nullableJSON maps an empty payload to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func scanTicket(s scanner) (domain.Ticket, error) {
	var (
		t           domain.Ticket
		id, userID  pgtype.UUID
		segmentIDs  []string
		status      string
		state       string
		payload     []byte
		scannedIn   pgtype.Timestamptz
		lastScanned pgtype.Timestamptz
		scannedOut  pgtype.Timestamptz
	)

	err := s.Scan(&id, &userID, &segmentIDs, &t.From, &t.To, &t.RunName,
		&status, &t.TransactionID, &t.Amount, &payload,
		&t.QRPayload, &state, &scannedIn, &lastScanned,
		&scannedOut, &t.Fine, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, domain.ErrNotFound
		}
		return domain.Ticket{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	if t.SegmentIDs, err = parseUUIDs(segmentIDs); err != nil {
		return domain.Ticket{}, fmt.Errorf("segment_ids: %w", err)
	}
	t.PaymentStatus = domain.PaymentStatus(status)
	t.JourneyState = domain.JourneyState(state)
	if len(payload) > 0 {
		t.GatewayPayload = json.RawMessage(payload)
	}
	t.ScannedInAt = optionalTime(scannedIn)
	t.LastScannedAt = optionalTime(lastScanned)
	t.ScannedOutAt = optionalTime(scannedOut)

	return t, nil
}
