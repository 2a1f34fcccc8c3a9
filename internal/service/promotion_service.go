package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PromotionService provides admin operations on promotion codes.
type PromotionService struct {
	promoRepo PromotionRepositoryInterface
	usageRepo UsageRepositoryInterface
}

// NewPromotionService creates a new PromotionService with the given repositories.
func NewPromotionService(promoRepo PromotionRepositoryInterface, usageRepo UsageRepositoryInterface) *PromotionService {
	return &PromotionService{promoRepo: promoRepo, usageRepo: usageRepo}
}

// Create validates the request and stores a new promotion.
// Returns ErrPromotionExists if the code is taken, ignoring case.
func (s *PromotionService) Create(ctx context.Context, req *model.PromotionRequest) (*model.PromotionCode, error) {
	promo, err := buildPromotion(req)
	if err != nil {
		return nil, err
	}
	promo.ID = uuid.New()

	if err := s.promoRepo.Insert(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Update replaces the editable fields of a promotion. Usage counters are kept.
func (s *PromotionService) Update(ctx context.Context, id uuid.UUID, req *model.PromotionRequest) (*model.PromotionCode, error) {
	promo, err := buildPromotion(req)
	if err != nil {
		return nil, err
	}
	promo.ID = id

	if err := s.promoRepo.Update(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Delete removes a promotion and its usage ledger.
func (s *PromotionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.promoRepo.Delete(ctx, id)
}

// Get returns a promotion by id, or ErrPromotionNotFound.
func (s *PromotionService) Get(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error) {
	promo, err := s.promoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if promo == nil {
		return nil, ErrPromotionNotFound
	}
	return promo, nil
}

// List returns one page of promotions. Page defaults to 1 and limit to 20
// (capped at 100).
func (s *PromotionService) List(ctx context.Context, filter model.PromotionListFilter) (*model.PromotionPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.EnhancedType != "" && !filter.EnhancedType.Valid() {
		return nil, validationError("unknown promotion type %q", filter.EnhancedType)
	}

	items, total, err := s.promoRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}

	lastPage := (total + filter.Limit - 1) / filter.Limit
	if lastPage < 1 {
		lastPage = 1
	}
	return &model.PromotionPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
		LastPage: lastPage,
	}, nil
}

// ListUsage returns the usage ledger of a promotion.
func (s *PromotionService) ListUsage(ctx context.Context, id uuid.UUID) ([]model.UsageRecord, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.usageRepo.ListUsage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	return records, nil
}

// buildPromotion turns a request into a promotion record, applying defaults
// and the rules the struct tags cannot express.
func buildPromotion(req *model.PromotionRequest) (*model.PromotionCode, error) {
	// Callers outside the handlers may skip validation
	if req == nil || req.DiscountValue == nil {
		return nil, ErrInvalidRequest
	}

	code := model.NormalizePromoCode(req.Code)
	if !model.PromoCodePattern.MatchString(code) {
		return nil, validationError("code must be 3-32 characters of A-Z, 0-9, '_' or '-'")
	}
	if !req.EnhancedType.Valid() {
		return nil, validationError("unknown promotion type %q", req.EnhancedType)
	}

	value := *req.DiscountValue
	if value.IsNegative() {
		return nil, validationError("discount_value must not be negative")
	}
	if req.DiscountType == model.DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validationError("percentage discount_value must not exceed 100")
	}
	if req.MinimumOrderAmount.IsNegative() || req.MaximumDiscount.IsNegative() {
		return nil, validationError("order amounts must not be negative")
	}
	if req.MaximumQuantity > 0 && req.MinimumQuantity > req.MaximumQuantity {
		return nil, validationError("minimum_quantity must not exceed maximum_quantity")
	}
	if req.GetYDiscountPercentage.IsNegative() || req.GetYDiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validationError("get_y_discount_percentage must be between 0 and 100")
	}

	buyX, getY := req.BuyXQuantity, req.GetYQuantity
	switch req.EnhancedType {
	case model.EnhancedBuyXGetY:
		if buyX < 1 || getY < 1 {
			return nil, validationError("buy_x_quantity and get_y_quantity are required for buy_x_get_y")
		}
	case model.EnhancedBuyOneGetOne:
		if buyX == 0 {
			buyX = 1
		}
		if getY == 0 {
			getY = 1
		}
	}

	perOrder := 1
	if req.UsagePerOrder != nil {
		perOrder = *req.UsagePerOrder
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	var validUntil *time.Time
	if req.ValidUntil != nil {
		v := req.ValidUntil.UTC()
		validUntil = &v
	}

	return &model.PromotionCode{
		Code:                      code,
		Name:                      strings.TrimSpace(req.Name),
		Description:               req.Description,
		DiscountType:              req.DiscountType,
		EnhancedType:              req.EnhancedType,
		DiscountValue:             value,
		MinimumOrderAmount:        req.MinimumOrderAmount,
		MaximumDiscount:           req.MaximumDiscount,
		UsageLimit:                req.UsageLimit,
		UsagePerCustomer:          req.UsagePerCustomer,
		UsagePerOrder:             perOrder,
		ValidUntil:                validUntil,
		IsActive:                  active,
		CategoryRestrictions:      model.NewRestrictionSet(req.CategoryRestrictions...),
		ProductRestrictions:       model.NewRestrictionSet(req.ProductRestrictions...),
		CustomerGroupRestrictions: model.NewRestrictionSet(req.CustomerGroupRestrictions...),
		FirstTimeOnly:             req.FirstTimeOnly,
		MinimumQuantity:           req.MinimumQuantity,
		MaximumQuantity:           req.MaximumQuantity,
		CombinationAllowed:        req.CombinationAllowed,
		StackWithPricingRules:     req.StackWithPricingRules,
		BuyXQuantity:              buyX,
		GetYQuantity:              getY,
		GetYDiscountPercentage:    req.GetYDiscountPercentage,
	}, nil
}
