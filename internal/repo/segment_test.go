package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/metro-commuter/internal/domain"
	"github.com/pkordes/metro-commuter/internal/repo"
)

func segmentFixture(run, src, dst, dep, arr string) domain.Segment {
	return domain.Segment{
		RunName:     run,
		Source:      src,
		Destination: dst,
		Departure:   dep,
		Arrival:     arr,
		Frequency:   10,
	}
}

func TestSegmentRepo_Create(t *testing.T) {
	r := repo.NewSegmentRepo(newTestTx(t))

	in := segmentFixture("Purple-1", "Indiranagar", "MG Road", "08:00", "08:06")
	in.Fare = ptr(12.5)

	got, err := r.Create(context.Background(), in)

	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID)
	assert.Equal(t, "08:00", got.Departure)
	assert.Equal(t, "08:06", got.Arrival)
	require.NotNil(t, got.Fare)
	assert.InDelta(t, 12.5, *got.Fare, 0.001)
	assert.Equal(t, 10, got.Frequency)
}

func TestSegmentRepo_Create_NoFare(t *testing.T) {
	r := repo.NewSegmentRepo(newTestTx(t))

	got, err := r.Create(context.Background(), segmentFixture("Purple-1", "A", "B", "08:00", "08:06"))

	require.NoError(t, err)
	assert.Nil(t, got.Fare)
}

func TestSegmentRepo_List_InsertionOrderAndRunFilter(t *testing.T) {
	r := repo.NewSegmentRepo(newTestTx(t))
	ctx := context.Background()

	a, err := r.Create(ctx, segmentFixture("Green-2", "A", "B", "09:00", "09:05"))
	require.NoError(t, err)
	b, err := r.Create(ctx, segmentFixture("Purple-1", "X", "Y", "08:00", "08:05"))
	require.NoError(t, err)
	c, err := r.Create(ctx, segmentFixture("Green-2", "B", "C", "09:05", "09:10"))
	require.NoError(t, err)

	all, err := r.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	green, err := r.List(ctx, "Green-2")
	require.NoError(t, err)
	require.Len(t, green, 2)
	assert.Equal(t, a.ID, green[0].ID)
	assert.Equal(t, c.ID, green[1].ID)
}

func TestSegmentRepo_ListByIDs(t *testing.T) {
	r := repo.NewSegmentRepo(newTestTx(t))
	ctx := context.Background()

	a, err := r.Create(ctx, segmentFixture("Green-2", "A", "B", "09:00", "09:05"))
	require.NoError(t, err)
	b, err := r.Create(ctx, segmentFixture("Green-2", "B", "C", "09:05", "09:10"))
	require.NoError(t, err)

	got, err := r.ListByIDs(ctx, []uuid.UUID{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID, "order follows the requested ids")
	assert.Equal(t, a.ID, got[1].ID)

	_, err = r.ListByIDs(ctx, []uuid.UUID{a.ID, uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
