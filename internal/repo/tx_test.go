package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
)

func startedTicket(t *testing.T, tx repo.TicketRepo) domain.Ticket {
	t.Helper()
	ctx := context.Background()
	created, err := tx.Create(ctx, ticketFixture())
	require.NoError(t, err)
	started, err := tx.StartJourney(ctx, created.ID, time.Now().UTC().Add(-4*time.Minute))
	require.NoError(t, err)
	return started
}

func TestTxRunner_CommitsTogether(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	tickets, riders := repo.NewTicketRepo(tx), repo.NewRiderRepo(tx)
	ticket := startedTicket(t, tickets)
	require.NoError(t, riders.Ensure(ctx, ticket.UserID))

	err := repo.NewTxRunner(tx).InTx(ctx, func(r repo.TxRepos) error {
		done, err := r.Tickets.CompleteJourney(ctx, ticket.ID, time.Now().UTC(), 30)
		if err != nil {
			return err
		}
		return r.Riders.IncrementFine(ctx, done.UserID, done.Fine)
	})
	require.NoError(t, err)

	got, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JourneyCompleted, got.JourneyState)
	rider, err := riders.GetByID(ctx, ticket.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), rider.OutstandingFine)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	tickets := repo.NewTicketRepo(tx)
	ticket := startedTicket(t, tickets)
	boom := errors.New("charge failed")

	err := repo.NewTxRunner(tx).InTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Tickets.CompleteJourney(ctx, ticket.ID, time.Now().UTC(), 30); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JourneyInJourney, got.JourneyState)
	assert.Zero(t, got.Fine)
}
