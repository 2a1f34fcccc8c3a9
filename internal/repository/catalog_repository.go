package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// PackRepository reads the pack catalog.
type PackRepository struct {
	pool PoolInterface
}

// NewPackRepository creates a new PackRepository with the given pool.
func NewPackRepository(pool *pgxpool.Pool) *PackRepository {
	return &PackRepository{pool: pool}
}

// NewPackRepositoryWithPool creates a new PackRepository with a custom pool interface.
func NewPackRepositoryWithPool(pool PoolInterface) *PackRepository {
	return &PackRepository{pool: pool}
}

// GetByID retrieves a pack. Returns nil, nil if it doesn't exist.
func (r *PackRepository) GetByID(ctx context.Context, id string) (*model.Pack, error) {
	query := `SELECT id, name, flavor_count, size, price, active FROM packs WHERE id = $1`

	var (
		p    model.Pack
		size string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.FlavorCount, &size, &p.Price, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pack %s: %w", id, err)
	}
	p.Size = model.Size(size)
	return &p, nil
}

// DeliveryZoneRepository reads delivery zones.
type DeliveryZoneRepository struct {
	pool PoolInterface
}

// NewDeliveryZoneRepository creates a new DeliveryZoneRepository with the given pool.
func NewDeliveryZoneRepository(pool *pgxpool.Pool) *DeliveryZoneRepository {
	return &DeliveryZoneRepository{pool: pool}
}

// NewDeliveryZoneRepositoryWithPool creates a new DeliveryZoneRepository with a custom pool interface.
func NewDeliveryZoneRepositoryWithPool(pool PoolInterface) *DeliveryZoneRepository {
	return &DeliveryZoneRepository{pool: pool}
}

// GetByID retrieves a delivery zone. Returns nil, nil if it doesn't exist.
func (r *DeliveryZoneRepository) GetByID(ctx context.Context, id string) (*model.DeliveryZone, error) {
	query := `SELECT id, name, fee, active FROM delivery_zones WHERE id = $1`

	var z model.DeliveryZone
	err := r.pool.QueryRow(ctx, query, id).Scan(&z.ID, &z.Name, &z.Fee, &z.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery zone %s: %w", id, err)
	}
	return &z, nil
}
