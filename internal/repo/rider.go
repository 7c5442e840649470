package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// RiderRepo defines the persistence operations for the fine-relevant slice
// of a rider account.
type RiderRepo interface {
	// Ensure creates the rider row with a zero balance if it does not exist.
	Ensure(ctx context.Context, id uuid.UUID) error

	// GetByID returns the rider. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Rider, error)

	// IncrementFine atomically adds amount to the rider's outstanding fine.
	// Returns domain.ErrNotFound if the rider does not exist.
	IncrementFine(ctx context.Context, id uuid.UUID, amount int64) error
}

// pgRiderRepo is the Postgres implementation of RiderRepo.
type pgRiderRepo struct {
	db db
}

// NewRiderRepo constructs a RiderRepo backed by the provided db connection.
func NewRiderRepo(db db) RiderRepo {
	return &pgRiderRepo{db: db}
}

func (r *pgRiderRepo) Ensure(ctx context.Context, id uuid.UUID) error {
	const q = `INSERT INTO riders (id) VALUES (@id) ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.RiderRepo.Ensure: %w", err)
	}
	return nil
}

func (r *pgRiderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	const q = `SELECT id, outstanding_fine, updated_at FROM riders WHERE id = @id`

	var rider domain.Rider
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&rider.ID, &rider.OutstandingFine, &rider.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.Rider{}, fmt.Errorf("repo.RiderRepo.GetByID: %w", err)
	}
	return rider, nil
}

// IncrementFine is a single UPDATE so concurrent journeys by the same rider
// never lose an increment.
func (r *pgRiderRepo) IncrementFine(ctx context.Context, id uuid.UUID, amount int64) error {
	const q = `
		UPDATE riders
		SET outstanding_fine = outstanding_fine + @amount,
		    updated_at       = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "amount": amount})
	if err != nil {
		return fmt.Errorf("repo.RiderRepo.IncrementFine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RiderRepo.IncrementFine: %w", domain.ErrNotFound)
	}
	return nil
}
