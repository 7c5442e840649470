package qrtoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-qr-secret-key-for-testing-purposes"

func TestSignAndParse(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)
	ticketID, userID := uuid.New(), uuid.New()

	token, err := s.Sign(ticketID, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, ticketID, claims.TicketID)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, issuer, claims.Issuer)
	assert.Equal(t, ticketID.String(), claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestSign_NoExpiryWhenTTLZero(t *testing.T) {
	s := NewSigner(testSecret, 0)

	token, err := s.Sign(uuid.New(), uuid.New())
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewSigner(testSecret, time.Hour).Sign(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = NewSigner("another-secret", time.Hour).Parse(token)

	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Expired(t *testing.T) {
	s := NewSigner(testSecret, time.Minute)
	issued := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, err := s.Sign(uuid.New(), uuid.New())
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = s.Parse(token)

	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		TicketID:         uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSigner(testSecret, time.Hour).Parse(token)

	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Garbage(t *testing.T) {
	_, err := NewSigner(testSecret, time.Hour).Parse("not-a-token")

	assert.ErrorIs(t, err, ErrInvalid)
}
