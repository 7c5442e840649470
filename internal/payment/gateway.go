// Package payment defines the boundary to the external payment gateway.
// The gateway is opaque to the rest of the service: it hands back a
// transaction id and a payload to forward to the rider, and later reports
// the outcome through the confirmation webhook.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Checkout describes the charge for one ticket.
type Checkout struct {
	TicketID uuid.UUID
	UserID   uuid.UUID
	Amount   float64
	// Description is shown to the rider on the gateway's payment page.
	Description string
}

// Initiation is what the gateway returns when a charge is opened.
type Initiation struct {
	TransactionID string
	// Payload is the gateway's raw response, stored on the ticket as-is.
	Payload json.RawMessage
}

// Gateway opens charges with an external payment provider.
type Gateway interface {
	Initiate(ctx context.Context, c Checkout) (Initiation, error)
}

// Sandbox is a Gateway that never talks to a provider. It issues
// transaction ids locally and points riders at a checkout URL; the outcome
// arrives through the normal confirmation webhook.
type Sandbox struct {
	checkoutURL string
}

// NewSandbox returns a Sandbox that builds checkout links under checkoutURL.
func NewSandbox(checkoutURL string) *Sandbox {
	return &Sandbox{checkoutURL: checkoutURL}
}

// Initiate implements Gateway.
func (s *Sandbox) Initiate(_ context.Context, c Checkout) (Initiation, error) {
	txID := "sbx_" + uuid.NewString()

	link, err := url.Parse(s.checkoutURL)
	if err != nil {
		return Initiation{}, fmt.Errorf("payment.Sandbox.Initiate: checkout url: %w", err)
	}
	q := link.Query()
	q.Set("transaction_id", txID)
	link.RawQuery = q.Encode()

	payload, err := json.Marshal(map[string]any{
		"provider":       "sandbox",
		"transaction_id": txID,
		"ticket_id":      c.TicketID,
		"amount":         c.Amount,
		"description":    c.Description,
		"checkout_url":   link.String(),
	})
	if err != nil {
		return Initiation{}, fmt.Errorf("payment.Sandbox.Initiate: %w", err)
	}

	return Initiation{TransactionID: txID, Payload: payload}, nil
}
