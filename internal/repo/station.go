package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/metro-commuter/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// StationRepo defines the persistence operations for Stations.
type StationRepo interface {
	// Create inserts a station. A name that already exists (case-insensitive)
	// yields domain.ErrConflict.
	Create(ctx context.Context, st domain.Station) (domain.Station, error)

	// List returns all stations, positioned stations first in line order,
	// then the rest by name.
	List(ctx context.Context) ([]domain.Station, error)
}

// pgStationRepo is the Postgres implementation of StationRepo.
type pgStationRepo struct {
	db db
}

// NewStationRepo constructs a StationRepo backed by the provided db connection.
func NewStationRepo(db db) StationRepo {
	return &pgStationRepo{db: db}
}

func (r *pgStationRepo) Create(ctx context.Context, st domain.Station) (domain.Station, error) {
	const q = `
		INSERT INTO stations (name, latitude, longitude, position)
		VALUES (@name, @latitude, @longitude, @position)
		RETURNING id, name, latitude, longitude, position, created_at`

	args := pgx.NamedArgs{
		"name":      st.Name,
		"latitude":  st.Latitude,
		"longitude": st.Longitude,
		"position":  st.Position, // nil becomes NULL
	}

	result, err := scanStation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Station{}, fmt.Errorf("repo.StationRepo.Create: station %q: %w", st.Name, domain.ErrConflict)
		}
		return domain.Station{}, fmt.Errorf("repo.StationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	const q = `
		SELECT id, name, latitude, longitude, position, created_at
		FROM stations
		ORDER BY position ASC NULLS LAST, name ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.StationRepo.List: %w", err)
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StationRepo.List: scan: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StationRepo.List: rows: %w", err)
	}
	return stations, nil
}

func scanStation(s scanner) (domain.Station, error) {
	var (
		st       domain.Station
		id       pgtype.UUID
		position pgtype.Int4
	)

	if err := s.Scan(&id, &st.Name, &st.Latitude, &st.Longitude, &position, &st.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Station{}, domain.ErrNotFound
		}
		return domain.Station{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	if position.Valid {
		p := int(position.Int32)
		st.Position = &p
	}
	return st, nil
}
