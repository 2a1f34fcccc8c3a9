package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/service"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

// StockRepository provides data access for flavor stock and its history.
type StockRepository struct {
	pool PoolInterface
}

// NewStockRepository creates a new StockRepository with the given pool.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// NewStockRepositoryWithPool creates a new StockRepository with a custom pool interface.
// This is primarily used for testing.
func NewStockRepositoryWithPool(pool PoolInterface) *StockRepository {
	return &StockRepository{pool: pool}
}

func scanStock(row pgx.Row) (*model.FlavorStock, error) {
	var (
		s    model.FlavorStock
		size string
	)
	if err := row.Scan(&s.FlavorID, &size, &s.Quantity, &s.AllowOutOfStockOrder, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Size = model.Size(size)
	return &s, nil
}

// Get retrieves the stock row for a flavor and size.
// Returns nil, nil if the flavor was never stocked in that size.
func (r *StockRepository) Get(ctx context.Context, flavorID string, size model.Size) (*model.FlavorStock, error) {
	query := `SELECT flavor_id, size, quantity, allow_out_of_stock_order, updated_at
		FROM flavor_stock WHERE flavor_id = $1 AND size = $2`

	s, err := scanStock(r.pool.QueryRow(ctx, query, flavorID, string(size)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock %s/%s: %w", flavorID, size, err)
	}
	return s, nil
}

// ListByFlavors returns every stock row of the given flavors.
func (r *StockRepository) ListByFlavors(ctx context.Context, flavorIDs []string) ([]model.FlavorStock, error) {
	if len(flavorIDs) == 0 {
		return []model.FlavorStock{}, nil
	}
	query := `SELECT flavor_id, size, quantity, allow_out_of_stock_order, updated_at
		FROM flavor_stock WHERE flavor_id = ANY($1) ORDER BY flavor_id, size`

	rows, err := r.pool.Query(ctx, query, flavorIDs)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	out := []model.FlavorStock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock rows: %w", err)
	}
	return out, nil
}

// EnsureRow creates an empty stock row for a flavor and size if none exists,
// so a following GetForUpdate always has a row to lock. A concurrent insert
// of the same row blocks until the other transaction finishes.
func (r *StockRepository) EnsureRow(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) error {
	query := `INSERT INTO flavor_stock (flavor_id, size, quantity, allow_out_of_stock_order, updated_at)
		VALUES ($1, $2, 0, false, NOW())
		ON CONFLICT (flavor_id, size) DO NOTHING`

	if _, err := tx.Exec(ctx, query, flavorID, string(size)); err != nil {
		return fmt.Errorf("ensure stock row %s/%s: %w", flavorID, size, err)
	}
	return nil
}

// GetForUpdate retrieves a stock row with a row lock (SELECT FOR UPDATE).
// Returns nil, nil if the row doesn't exist.
func (r *StockRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) (*model.FlavorStock, error) {
	query := `SELECT flavor_id, size, quantity, allow_out_of_stock_order, updated_at
		FROM flavor_stock WHERE flavor_id = $1 AND size = $2 FOR UPDATE`

	s, err := scanStock(tx.QueryRow(ctx, query, flavorID, string(size)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update %s/%s: %w", flavorID, size, err)
	}
	return s, nil
}

// Upsert writes the quantity and override flag of a stock row.
// Must be called within a transaction after locking the row.
func (r *StockRepository) Upsert(ctx context.Context, tx database.TxQuerier, s *model.FlavorStock) error {
	query := `INSERT INTO flavor_stock (flavor_id, size, quantity, allow_out_of_stock_order, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (flavor_id, size) DO UPDATE
		SET quantity = EXCLUDED.quantity,
			allow_out_of_stock_order = EXCLUDED.allow_out_of_stock_order,
			updated_at = NOW()
		RETURNING updated_at`

	if err := tx.QueryRow(ctx, query, s.FlavorID, string(s.Size), s.Quantity, s.AllowOutOfStockOrder).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert stock %s/%s: %w", s.FlavorID, s.Size, err)
	}
	return nil
}

// DecrementIfAvailable takes amount units in a single conditional update.
// The update only applies when enough stock remains or the out-of-stock
// override is set (quantity then floors at zero). Returns
// service.ErrInsufficientStock when the condition fails or the row is missing.
func (r *StockRepository) DecrementIfAvailable(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size, amount int) (int, int, error) {
	query := `UPDATE flavor_stock AS fs
		SET quantity = GREATEST(fs.quantity - $3, 0), updated_at = NOW()
		FROM (SELECT quantity FROM flavor_stock WHERE flavor_id = $1 AND size = $2 FOR UPDATE) AS prev
		WHERE fs.flavor_id = $1 AND fs.size = $2
			AND (fs.quantity >= $3 OR fs.allow_out_of_stock_order)
		RETURNING prev.quantity, fs.quantity`

	var oldQty, newQty int
	err := tx.QueryRow(ctx, query, flavorID, string(size), amount).Scan(&oldQty, &newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, service.ErrInsufficientStock
		}
		return 0, 0, fmt.Errorf("decrement stock %s/%s: %w", flavorID, size, err)
	}
	return oldQty, newQty, nil
}

// InsertHistory appends an immutable stock history row.
func (r *StockRepository) InsertHistory(ctx context.Context, tx database.TxQuerier, h *model.StockHistory) error {
	query := `INSERT INTO stock_history
		(id, item_id, item_type, size, old_quantity, new_quantity, change_amount, change_type, notes, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		h.ID, h.ItemID, string(h.ItemType), string(h.Size),
		h.OldQuantity, h.NewQuantity, h.ChangeAmount, string(h.ChangeType),
		h.Notes, h.ChangedBy, h.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert stock history: %w", err)
	}
	return nil
}

// ListHistory returns the newest history rows for an item, up to limit.
func (r *StockRepository) ListHistory(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error) {
	query := `SELECT id, item_id, item_type, size, old_quantity, new_quantity, change_amount, change_type, notes, changed_by, changed_at
		FROM stock_history WHERE item_id = $1 AND item_type = $2
		ORDER BY changed_at DESC LIMIT $3`

	rows, err := r.pool.Query(ctx, query, itemID, string(itemType), limit)
	if err != nil {
		return nil, fmt.Errorf("list stock history for %s: %w", itemID, err)
	}
	defer rows.Close()

	out := []model.StockHistory{}
	for rows.Next() {
		var (
			h                          model.StockHistory
			itemTypeStr, size, chgType string
		)
		if err := rows.Scan(&h.ID, &h.ItemID, &itemTypeStr, &size, &h.OldQuantity, &h.NewQuantity,
			&h.ChangeAmount, &chgType, &h.Notes, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan stock history: %w", err)
		}
		h.ItemType = model.ItemType(itemTypeStr)
		h.Size = model.Size(size)
		h.ChangeType = model.ChangeType(chgType)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock history rows: %w", err)
	}
	return out, nil
}
