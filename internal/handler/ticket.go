package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/service"
)

// PurchaseTicketRequest is the body of POST /tickets: the segment ids of a
// chosen itinerary option.
type PurchaseTicketRequest struct {
	UserID     uuid.UUID   `json:"user_id"`
	SegmentIDs []uuid.UUID `json:"segment_ids"`
}

// ConfirmPaymentRequest is the body of POST /payments/confirm, posted by the
// payment gateway. Payload is stored on the ticket as-is.
type ConfirmPaymentRequest struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// TapQRRequest is the body of POST /taps, submitted by a gate scanner.
type TapQRRequest struct {
	QRPayload string `json:"qr_payload"`
}

// PurchaseTicket handles POST /tickets.
func (s *Server) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	var body PurchaseTicketRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	t, err := s.tickets.Purchase(r.Context(), service.PurchaseRequest{
		UserID:     body.UserID,
		SegmentIDs: body.SegmentIDs,
	})
	if err != nil {
		s.serviceError(w, r, err, "segment not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTicket handles GET /tickets/{id}.
func (s *Server) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	t, err := s.tickets.GetTicket(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// TapTicket handles POST /tickets/{id}/tap.
// The first tap starts the journey; the second ends it and reports any fine.
func (s *Server) TapTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := s.journeys.RecordTap(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TapQR handles POST /taps with the payload scanned from a ticket's QR code.
func (s *Server) TapQR(w http.ResponseWriter, r *http.Request) {
	var body TapQRRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.QRPayload == "" {
		requestError(w, "qr_payload is required")
		return
	}

	res, err := s.journeys.RecordTapByQR(r.Context(), body.QRPayload)
	if err != nil {
		s.serviceError(w, r, err, "ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ConfirmPayment handles POST /payments/confirm.
func (s *Server) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var body ConfirmPaymentRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	t, err := s.tickets.ConfirmPayment(r.Context(), body.TransactionID, domain.PaymentStatus(body.Status), body.Payload)
	if err != nil {
		s.serviceError(w, r, err, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetRider handles GET /riders/{id}.
func (s *Server) GetRider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	rider, err := s.tickets.GetRider(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "rider not found")
		return
	}
	writeJSON(w, http.StatusOK, rider)
}
