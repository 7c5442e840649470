package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the payment lifecycle of a ticket.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

// JourneyState is the tap lifecycle of a ticket.
// Transitions only move forward: unscanned → in_journey → completed.
type JourneyState string

const (
	JourneyUnscanned JourneyState = "unscanned"
	JourneyInJourney JourneyState = "in_journey"
	JourneyCompleted JourneyState = "completed"
)

// Ticket is a purchased itinerary and the record of its journey.
// QRPayload is empty until the payment is confirmed.
// ScannedInAt and ScannedOutAt are nil until the first and second tap.
type Ticket struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	SegmentIDs     []uuid.UUID     `json:"segment_ids"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	RunName        string          `json:"run_name"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	Amount         float64         `json:"amount"`
	GatewayPayload json.RawMessage `json:"gateway_payload,omitempty"`
	QRPayload      string          `json:"qr_payload,omitempty"`
	JourneyState   JourneyState    `json:"journey_state"`
	ScannedInAt    *time.Time      `json:"scanned_in_at,omitempty"`
	LastScannedAt  *time.Time      `json:"last_scanned_at,omitempty"`
	ScannedOutAt   *time.Time      `json:"scanned_out_at,omitempty"`
	Fine           int64           `json:"fine"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TapEvent names the transition a tap produced.
type TapEvent string

const (
	TapJourneyStarted TapEvent = "journey_started"
	TapJourneyEnded   TapEvent = "journey_ended"
)

// TapResult is what a gate receives after a tap.
// Fine is only meaningful for TapJourneyEnded and is zero otherwise.
type TapResult struct {
	Event    TapEvent  `json:"event"`
	TicketID uuid.UUID `json:"ticket_id"`
	Fine     int64     `json:"fine"`
}
