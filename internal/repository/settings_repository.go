package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

const settingOrderMode = "order_mode"

// SettingsRepository stores store-wide settings as key/value rows.
type SettingsRepository struct {
	pool PoolInterface
}

// NewSettingsRepository creates a new SettingsRepository with the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// NewSettingsRepositoryWithPool creates a new SettingsRepository with a custom pool interface.
func NewSettingsRepositoryWithPool(pool PoolInterface) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetOrderMode returns the configured order mode, stock_based when unset.
func (r *SettingsRepository) GetOrderMode(ctx context.Context) (model.OrderMode, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM store_settings WHERE key = $1`, settingOrderMode).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OrderModeStockBased, nil
		}
		return "", fmt.Errorf("get order mode: %w", err)
	}

	mode := model.OrderMode(value)
	if !mode.Valid() {
		return "", fmt.Errorf("get order mode: unknown value %q", value)
	}
	return mode, nil
}

// SetOrderMode persists the order mode.
func (r *SettingsRepository) SetOrderMode(ctx context.Context, mode model.OrderMode) error {
	query := `INSERT INTO store_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, settingOrderMode, string(mode)); err != nil {
		return fmt.Errorf("set order mode: %w", err)
	}
	return nil
}
