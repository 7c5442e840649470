// Package qrtoken issues and verifies the signed payload encoded in a
// ticket's QR code. Gates scan the code and submit the payload back; the
// signature proves the ticket id was issued by this service.
package qrtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "metro-commuter"

// ErrInvalid is returned by Parse for any payload that is not a valid,
// unexpired token signed by this service.
var ErrInvalid = errors.New("invalid ticket token")

// Claims is the content of a ticket QR payload.
type Claims struct {
	TicketID uuid.UUID `json:"ticket_id"`
	UserID   uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// Signer signs and verifies ticket tokens with an HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer. A non-positive ttl issues tokens without expiry.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns the QR payload for a paid ticket.
func (s *Signer) Sign(ticketID, userID uuid.UUID) (string, error) {
	now := s.now()
	claims := Claims{
		TicketID: ticketID,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
			Subject:  ticketID.String(),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("qrtoken.Sign: %w", err)
	}
	return token, nil
}

// Parse verifies a QR payload and returns its claims.
// Every verification failure wraps ErrInvalid.
func (s *Signer) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.TicketID == uuid.Nil {
		return nil, ErrInvalid
	}
	return claims, nil
}
