package repo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
)

func ticketFixture() domain.Ticket {
	return domain.Ticket{
		UserID:     uuid.New(),
		SegmentIDs: []uuid.UUID{uuid.New(), uuid.New()},
		From:       "Indiranagar",
		To:         "Majestic",
		RunName:    "Purple-1",
		Amount:     30,
	}
}

func TestTicketRepo_Create(t *testing.T) {
	r := repo.NewTicketRepo(newTestTx(t))
	in := ticketFixture()

	got, err := r.Create(context.Background(), in)

	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID)
	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, in.SegmentIDs, got.SegmentIDs)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Equal(t, domain.JourneyUnscanned, got.JourneyState)
	assert.InDelta(t, 30, got.Amount, 0.001)
	assert.Nil(t, got.ScannedInAt)
	assert.Nil(t, got.ScannedOutAt)
	assert.Zero(t, got.Fine)
	assert.Empty(t, got.QRPayload)
}

func TestTicketRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewTicketRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTicketRepo_PaymentLifecycle(t *testing.T) {
	r := repo.NewTicketRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, ticketFixture())
	require.NoError(t, err)

	attached, err := r.AttachPayment(ctx, created.ID, "txn_123", json.RawMessage(`{"checkout":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "txn_123", attached.TransactionID)
	assert.JSONEq(t, `{"checkout":"x"}`, string(attached.GatewayPayload))

	byTx, err := r.GetByTransactionID(ctx, "txn_123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTx.ID)

	paid, err := r.SettlePayment(ctx, created.ID, domain.PaymentPaid, nil, "qr-token")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, "qr-token", paid.QRPayload)
	assert.JSONEq(t, `{"checkout":"x"}`, string(paid.GatewayPayload), "nil payload keeps the stored one")

	// Settling twice is rejected.
	_, err = r.SettlePayment(ctx, created.ID, domain.PaymentFailed, nil, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTicketRepo_JourneyTransitions(t *testing.T) {
	r := repo.NewTicketRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, ticketFixture())
	require.NoError(t, err)

	in := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	out := in.Add(210 * time.Second)

	started, err := r.StartJourney(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.JourneyInJourney, started.JourneyState)
	require.NotNil(t, started.ScannedInAt)
	assert.True(t, started.ScannedInAt.Equal(in))
	require.NotNil(t, started.LastScannedAt)

	_, err = r.StartJourney(ctx, created.ID, in)
	assert.ErrorIs(t, err, domain.ErrConflict, "second start must not apply")

	done, err := r.CompleteJourney(ctx, created.ID, out, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.JourneyCompleted, done.JourneyState)
	require.NotNil(t, done.ScannedOutAt)
	assert.True(t, done.ScannedOutAt.Equal(out))
	assert.Equal(t, int64(20), done.Fine)

	_, err = r.CompleteJourney(ctx, created.ID, out.Add(time.Minute), 30)
	assert.ErrorIs(t, err, domain.ErrConflict, "a completed journey cannot be completed again")
}
