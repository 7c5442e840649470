package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// SegmentRepo defines the persistence operations for schedule Segments.
type SegmentRepo interface {
	// Create inserts a segment and returns the persisted record.
	Create(ctx context.Context, seg domain.Segment) (domain.Segment, error)

	// List returns segments in insertion order. An empty runName returns
	// every segment in the dataset; otherwise only that run's segments.
	List(ctx context.Context, runName string) ([]domain.Segment, error)

	// ListByIDs returns the segments with the given ids in the order the ids
	// were supplied. Returns domain.ErrNotFound if any id is unknown.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Segment, error)
}

// pgSegmentRepo is the Postgres implementation of SegmentRepo.
type pgSegmentRepo struct {
	db db
}

// NewSegmentRepo constructs a SegmentRepo backed by the provided db connection.
func NewSegmentRepo(db db) SegmentRepo {
	return &pgSegmentRepo{db: db}
}

const segmentColumns = `id, run_name, source, destination, departure, arrival, fare::float8, frequency_minutes, created_at`

func (r *pgSegmentRepo) Create(ctx context.Context, seg domain.Segment) (domain.Segment, error) {
	const q = `
		INSERT INTO segments (run_name, source, destination, departure, arrival, fare, frequency_minutes)
		VALUES (@run_name, @source, @destination, @departure, @arrival, @fare, @frequency)
		RETURNING ` + segmentColumns

	args := pgx.NamedArgs{
		"run_name":    seg.RunName,
		"source":      seg.Source,
		"destination": seg.Destination,
		"departure":   seg.Departure,
		"arrival":     seg.Arrival,
		"fare":        seg.Fare,
		"frequency":   seg.Frequency,
	}

	result, err := scanSegment(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Segment{}, fmt.Errorf("repo.SegmentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgSegmentRepo) List(ctx context.Context, runName string) ([]domain.Segment, error) {
	const q = `
		SELECT ` + segmentColumns + `
		FROM segments
		WHERE @run_name = '' OR run_name = @run_name
		ORDER BY seq ASC`

	segs, err := r.query(ctx, q, pgx.NamedArgs{"run_name": runName})
	if err != nil {
		return nil, fmt.Errorf("repo.SegmentRepo.List: %w", err)
	}
	return segs, nil
}

func (r *pgSegmentRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Segment, error) {
	const q = `
		SELECT ` + segmentColumns + `
		FROM segments
		WHERE id = ANY(@ids::uuid[])`

	segs, err := r.query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.SegmentRepo.ListByIDs: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Segment, len(segs))
	for _, s := range segs {
		byID[s.ID] = s
	}
	ordered := make([]domain.Segment, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("repo.SegmentRepo.ListByIDs: segment %s: %w", id, domain.ErrNotFound)
		}
		ordered = append(ordered, s)
	}
	return ordered, nil
}

func (r *pgSegmentRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Segment, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segs []domain.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		segs = append(segs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return segs, nil
}

func scanSegment(s scanner) (domain.Segment, error) {
	var (
		seg  domain.Segment
		id   pgtype.UUID
		fare pgtype.Float8
	)

	err := s.Scan(&id, &seg.RunName, &seg.Source, &seg.Destination,
		&seg.Departure, &seg.Arrival, &fare, &seg.Frequency, &seg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Segment{}, domain.ErrNotFound
		}
		return domain.Segment{}, err
	}

	seg.ID = uuid.UUID(id.Bytes)
	if fare.Valid {
		f := fare.Float64
		seg.Fare = &f
	}
	return seg, nil
}
