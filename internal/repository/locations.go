package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// LocationRepository reads the venue catalog. Venues are provisioned by
// migrations and never written here.
type LocationRepository struct {
	db *pgxpool.Pool
}

// NewLocationRepository constructs a LocationRepository.
func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

// List returns all venues ordered by name.
func (r *LocationRepository) List(ctx context.Context) ([]model.Location, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, capacity, created_at, updated_at
		 FROM locations
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Capacity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetByID returns a single venue or ErrNotFound.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var l model.Location
	err := r.db.QueryRow(ctx,
		`SELECT id, name, capacity, created_at, updated_at
		 FROM locations WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Name, &l.Capacity, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}
