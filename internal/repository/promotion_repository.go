package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/service"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

const promotionColumns = `id, code, name, description, discount_type, enhanced_type,
	discount_value, minimum_order_amount, maximum_discount,
	usage_limit, used_count, usage_per_customer, usage_per_order, valid_until, is_active,
	category_restrictions, product_restrictions, customer_group_restrictions,
	first_time_only, minimum_quantity, maximum_quantity, combination_allowed, stack_with_pricing_rules,
	buy_x_quantity, get_y_quantity, get_y_discount_percentage, created_at, updated_at`

// PromotionRepository provides data access for promotion codes using pgx.
type PromotionRepository struct {
	pool PoolInterface
}

// NewPromotionRepository creates a new PromotionRepository with the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// NewPromotionRepositoryWithPool creates a new PromotionRepository with a custom pool interface.
// This is primarily used for testing.
func NewPromotionRepositoryWithPool(pool PoolInterface) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// scanPromotion reads one row selected with promotionColumns.
// Restriction arrays become typed sets here so callers never see raw lists.
func scanPromotion(row pgx.Row) (*model.PromotionCode, error) {
	var (
		p                     model.PromotionCode
		cats, prods, groups   []string
		discountType, enhType string
	)
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &discountType, &enhType,
		&p.DiscountValue, &p.MinimumOrderAmount, &p.MaximumDiscount,
		&p.UsageLimit, &p.UsedCount, &p.UsagePerCustomer, &p.UsagePerOrder, &p.ValidUntil, &p.IsActive,
		&cats, &prods, &groups,
		&p.FirstTimeOnly, &p.MinimumQuantity, &p.MaximumQuantity, &p.CombinationAllowed, &p.StackWithPricingRules,
		&p.BuyXQuantity, &p.GetYQuantity, &p.GetYDiscountPercentage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.DiscountType = model.DiscountType(discountType)
	p.EnhancedType = model.EnhancedType(enhType)
	p.CategoryRestrictions = model.NewRestrictionSet(cats...)
	p.ProductRestrictions = model.NewRestrictionSet(prods...)
	p.CustomerGroupRestrictions = model.NewRestrictionSet(groups...)
	return &p, nil
}

func promotionArgs(p *model.PromotionCode) []any {
	return []any{
		p.ID, p.Code, p.Name, p.Description, string(p.DiscountType), string(p.EnhancedType),
		p.DiscountValue, p.MinimumOrderAmount, p.MaximumDiscount,
		p.UsageLimit, p.UsagePerCustomer, p.UsagePerOrder, p.ValidUntil, p.IsActive,
		p.CategoryRestrictions.Values(), p.ProductRestrictions.Values(), p.CustomerGroupRestrictions.Values(),
		p.FirstTimeOnly, p.MinimumQuantity, p.MaximumQuantity, p.CombinationAllowed, p.StackWithPricingRules,
		p.BuyXQuantity, p.GetYQuantity, p.GetYDiscountPercentage,
	}
}

// Insert inserts a new promotion code. used_count always starts at zero.
// Returns service.ErrPromotionExists if the code is already taken.
func (r *PromotionRepository) Insert(ctx context.Context, p *model.PromotionCode) error {
	query := `INSERT INTO promotion_codes (
		id, code, name, description, discount_type, enhanced_type,
		discount_value, minimum_order_amount, maximum_discount,
		usage_limit, usage_per_customer, usage_per_order, valid_until, is_active,
		category_restrictions, product_restrictions, customer_group_restrictions,
		first_time_only, minimum_quantity, maximum_quantity, combination_allowed, stack_with_pricing_rules,
		buy_x_quantity, get_y_quantity, get_y_discount_percentage
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	RETURNING used_count, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, promotionArgs(p)...).Scan(&p.UsedCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrPromotionExists
		}
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a promotion. used_count is never
// touched here; it only moves through IncrementUsedCount.
func (r *PromotionRepository) Update(ctx context.Context, p *model.PromotionCode) error {
	query := `UPDATE promotion_codes SET
		code = $2, name = $3, description = $4, discount_type = $5, enhanced_type = $6,
		discount_value = $7, minimum_order_amount = $8, maximum_discount = $9,
		usage_limit = $10, usage_per_customer = $11, usage_per_order = $12, valid_until = $13, is_active = $14,
		category_restrictions = $15, product_restrictions = $16, customer_group_restrictions = $17,
		first_time_only = $18, minimum_quantity = $19, maximum_quantity = $20,
		combination_allowed = $21, stack_with_pricing_rules = $22,
		buy_x_quantity = $23, get_y_quantity = $24, get_y_discount_percentage = $25,
		updated_at = NOW()
	WHERE id = $1
	RETURNING used_count, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, promotionArgs(p)...).Scan(&p.UsedCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrPromotionNotFound
		}
		if isUniqueViolation(err) {
			return service.ErrPromotionExists
		}
		return fmt.Errorf("update promotion %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a promotion and, by cascade, its usage ledger.
func (r *PromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promotion_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrPromotionNotFound
	}
	return nil
}

// GetByID retrieves a promotion by id.
// Returns nil, nil if the promotion is not found (service layer handles this).
func (r *PromotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotion_codes WHERE id = $1`

	p, err := scanPromotion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion by id %s: %w", id, err)
	}
	return p, nil
}

// GetByCode retrieves a promotion by code, ignoring case.
// Returns nil, nil if the promotion is not found.
func (r *PromotionRepository) GetByCode(ctx context.Context, code string) (*model.PromotionCode, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotion_codes WHERE LOWER(code) = LOWER($1)`

	p, err := scanPromotion(r.pool.QueryRow(ctx, query, strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion by code %s: %w", code, err)
	}
	return p, nil
}

// GetByCodeForUpdate retrieves a promotion with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrPromotionNotFound if the promotion doesn't exist.
func (r *PromotionRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.PromotionCode, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotion_codes WHERE LOWER(code) = LOWER($1) FOR UPDATE`

	p, err := scanPromotion(tx.QueryRow(ctx, query, strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion for update %s: %w", code, err)
	}
	return p, nil
}

// List returns one page of promotions matching filter plus the total match count.
func (r *PromotionRepository) List(ctx context.Context, filter model.PromotionListFilter) ([]model.PromotionCode, int, error) {
	where, args := promotionFilterClause(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM promotion_codes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promotions: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM promotion_codes%s ORDER BY created_at DESC, code LIMIT $%d OFFSET $%d`,
		promotionColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	items := []model.PromotionCode{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan promotion: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate promotion rows: %w", err)
	}
	return items, total, nil
}

func promotionFilterClause(filter model.PromotionListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		conds = append(conds, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.EnhancedType != "" {
		args = append(args, string(filter.EnhancedType))
		conds = append(conds, fmt.Sprintf("enhanced_type = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// IncrementUsedCount bumps used_count only while it is below usage_limit
// (0 = unlimited). Returns service.ErrUsageConflict when the cap is reached.
func (r *PromotionRepository) IncrementUsedCount(ctx context.Context, tx database.TxQuerier, id uuid.UUID) error {
	query := `UPDATE promotion_codes
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit = 0 OR used_count < usage_limit)`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment used_count for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrUsageConflict
	}
	return nil
}
