package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/engine"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

// CheckoutRepositories groups the data access the checkout flow needs.
type CheckoutRepositories struct {
	Promotions PromotionRepositoryInterface
	Usage      UsageRepositoryInterface
	Stock      StockRepositoryInterface
	Packs      PackRepositoryInterface
	Zones      DeliveryZoneRepositoryInterface
	Settings   SettingsRepositoryInterface
}

// CheckoutService evaluates carts against promotions and confirms orders.
type CheckoutService struct {
	pool    TxBeginner
	repos   CheckoutRepositories
	ledger  *UsageLedger
	timeout time.Duration
	now     func() time.Time
}

// NewCheckoutService creates a CheckoutService. timeout bounds a single
// confirmation, locks included; zero means no extra deadline.
func NewCheckoutService(pool TxBeginner, repos CheckoutRepositories, timeout time.Duration) *CheckoutService {
	return &CheckoutService{
		pool:    pool,
		repos:   repos,
		ledger:  NewUsageLedger(repos.Promotions, repos.Usage),
		timeout: timeout,
		now:     time.Now,
	}
}

// stockDemand is the total units of one flavor and size an order takes.
type stockDemand struct {
	FlavorID string
	Size     model.Size
	Quantity int
}

// preparedCart is a request cart checked against the catalog and stock.
type preparedCart struct {
	cart     model.Cart
	demand   []stockDemand
	mode     model.OrderMode
	zone     model.DeliveryZone
	customer string
}

// prepare loads the order mode and delivery zone, prices pack lines from the
// catalog and validates every pack selection against current stock.
func (s *CheckoutService) prepare(ctx context.Context, req *model.CheckoutRequest) (*preparedCart, error) {
	mode, err := s.repos.Settings.GetOrderMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("get order mode: %w", err)
	}

	zone, err := s.repos.Zones.GetByID(ctx, req.DeliveryZoneID)
	if err != nil {
		return nil, fmt.Errorf("get delivery zone: %w", err)
	}
	if zone == nil || !zone.Active {
		return nil, ErrDeliveryZoneNotFound
	}

	items := make([]model.CartItem, len(req.Items))
	copy(items, req.Items)

	packs := make(map[string]*model.Pack)
	var flavorIDs []string
	for i := range items {
		item := &items[i]
		if !item.IsPack() {
			continue
		}
		pack, ok := packs[item.PackID]
		if !ok {
			pack, err = s.repos.Packs.GetByID(ctx, item.PackID)
			if err != nil {
				return nil, fmt.Errorf("get pack: %w", err)
			}
			if pack == nil || !pack.Active {
				return nil, ErrPackNotFound
			}
			packs[item.PackID] = pack
		}
		item.UnitPrice = pack.Price
		if err := checkSelectionSizes(pack, item.Selections); err != nil {
			return nil, err
		}

		selections := make([]model.FlavorSelection, len(item.Selections))
		for j, sel := range item.Selections {
			sel.Size = pack.Size
			selections[j] = sel
			flavorIDs = append(flavorIDs, sel.FlavorID)
		}
		item.Selections = selections
	}

	lookup, err := s.stockLookup(ctx, flavorIDs)
	if err != nil {
		return nil, err
	}

	demand := make(map[string]*stockDemand)
	for _, item := range items {
		if !item.IsPack() {
			continue
		}
		pack := packs[item.PackID]
		res := engine.ValidateSelection(*pack, item.Selections, lookup, mode)
		if !res.Valid {
			return nil, &RuleViolationError{Reason: res.Reason, PackID: pack.ID, FlavorID: res.FlavorID}
		}
		for _, sel := range item.Selections {
			key := sel.FlavorID + "|" + string(sel.Size)
			d, ok := demand[key]
			if !ok {
				d = &stockDemand{FlavorID: sel.FlavorID, Size: sel.Size}
				demand[key] = d
			}
			d.Quantity += sel.Quantity * item.Quantity
		}
	}

	prepared := &preparedCart{
		cart:     model.Cart{Items: items, PricingRuleDiscount: req.PricingRuleDiscount},
		mode:     mode,
		zone:     *zone,
		customer: model.CustomerKey(req.CustomerID, req.GuestEmail),
	}
	for _, d := range demand {
		stock, _ := lookup(d.FlavorID, d.Size)
		if !engine.CanFulfill(stock, d.Quantity, mode) {
			return nil, &RuleViolationError{Reason: engine.ReasonStockExceeded, FlavorID: d.FlavorID}
		}
		prepared.demand = append(prepared.demand, *d)
	}
	// Fixed lock order keeps concurrent confirmations from deadlocking.
	sort.Slice(prepared.demand, func(i, j int) bool {
		a, b := prepared.demand[i], prepared.demand[j]
		if a.FlavorID != b.FlavorID {
			return a.FlavorID < b.FlavorID
		}
		return a.Size < b.Size
	})
	return prepared, nil
}

func (s *CheckoutService) stockLookup(ctx context.Context, flavorIDs []string) (engine.StockLookup, error) {
	rows, err := s.repos.Stock.ListByFlavors(ctx, flavorIDs)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	byKey := make(map[string]model.FlavorStock, len(rows))
	for _, r := range rows {
		byKey[r.FlavorID+"|"+string(r.Size)] = r
	}
	return func(flavorID string, size model.Size) (model.FlavorStock, bool) {
		st, ok := byKey[flavorID+"|"+string(size)]
		if !ok {
			return model.FlavorStock{FlavorID: flavorID, Size: size}, false
		}
		return st, true
	}, nil
}

func (s *CheckoutService) evalContext(req *model.CheckoutRequest, customerKey string, usage int) engine.EvalContext {
	return engine.EvalContext{
		IsFirstTimeCustomer: req.IsFirstTimeCustomer,
		CustomerKey:         customerKey,
		CustomerUsage:       usage,
		CustomerGroups:      req.CustomerGroups,
		Now:                 s.now(),
	}
}

func buildResponse(p *preparedCart, promo *model.PromotionCode, ev engine.Evaluation) *model.CheckoutResponse {
	totals := engine.ComposeTotals(p.cart.Subtotal(), p.zone.Fee, ev)
	resp := &model.CheckoutResponse{
		PromoApplied:         ev.Applicable,
		Reason:               string(ev.Reason),
		OrderMode:            p.mode,
		Subtotal:             totals.Subtotal,
		DeliveryFee:          totals.DeliveryFee,
		EffectiveDeliveryFee: totals.EffectiveDeliveryFee,
		DiscountAmount:       totals.DiscountAmount,
		FinalTotal:           totals.FinalTotal,
	}
	if promo != nil {
		resp.PromoCode = promo.Code
	}
	return resp
}

// Preview evaluates the cart and promotion without writing anything.
// A promotion that does not apply is reported through Reason, not an error.
func (s *CheckoutService) Preview(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	// Callers outside the handlers may skip validation
	if req == nil {
		return nil, ErrInvalidRequest
	}

	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if model.NormalizePromoCode(req.PromoCode) == "" {
		return buildResponse(prepared, nil, engine.Evaluation{}), nil
	}

	promo, err := s.repos.Promotions.GetByCode(ctx, req.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if promo == nil {
		return nil, ErrPromotionNotFound
	}

	usage, err := s.ledger.GetUsage(ctx, promo.ID, prepared.customer)
	if err != nil {
		return nil, err
	}

	ev := engine.Evaluate(prepared.cart, *promo, s.evalContext(req, prepared.customer, usage.UsageCount))
	return buildResponse(prepared, promo, ev), nil
}

// Confirm re-validates the order under row locks and commits its side effects
// in one transaction: stock decrements with history rows (stock_based mode
// only) and promotion usage. Returns:
//   - *RuleViolationError when the promotion no longer applies or stock ran out
//   - ErrAlreadyRedeemed if the order already used the promotion
//   - ErrUsageConflict if a usage cap was reached concurrently
//
// Only the redemption row is keyed by order_id. An order confirmed without a
// promotion code leaves no such row, so replaying its order_id decrements
// stock again; callers must submit each order at most once.
func (s *CheckoutService) Confirm(ctx context.Context, req *model.ConfirmOrderRequest) (*model.CheckoutResponse, error) {
	// Callers outside the handlers may skip validation
	if req == nil || req.OrderID == "" {
		return nil, ErrInvalidRequest
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prepared, err := s.prepare(ctx, &req.CheckoutRequest)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the promotion and the customer's ledger row, then re-evaluate
	var (
		promo *model.PromotionCode
		ev    engine.Evaluation
	)
	if model.NormalizePromoCode(req.PromoCode) != "" {
		promo, err = s.repos.Promotions.GetByCodeForUpdate(ctx, tx, req.PromoCode)
		if err != nil {
			if errors.Is(err, ErrPromotionNotFound) {
				return nil, ErrPromotionNotFound
			}
			return nil, fmt.Errorf("get promotion for update: %w", err)
		}
		if promo.UsagePerCustomer != nil && prepared.customer == "" {
			return nil, ErrCustomerIdentityRequired
		}

		usage, err := s.ledger.GetUsageForUpdate(ctx, tx, promo.ID, prepared.customer)
		if err != nil {
			return nil, err
		}

		ev = engine.Evaluate(prepared.cart, *promo, s.evalContext(&req.CheckoutRequest, prepared.customer, usage.UsageCount))
		if !ev.Applicable {
			return nil, &RuleViolationError{Reason: ev.Reason}
		}
	}

	// 2. Take stock
	if prepared.mode == model.OrderModeStockBased {
		if err := s.takeStock(ctx, tx, req.OrderID, prepared.demand); err != nil {
			return nil, err
		}
	}

	// 3. Record promotion usage
	if promo != nil {
		if err := s.ledger.RecordUsage(ctx, tx, promo, prepared.customer, req.OrderID, ev.DiscountAmount); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	resp := buildResponse(prepared, promo, ev)
	resp.OrderID = req.OrderID
	log.Info().
		Str("order_id", req.OrderID).
		Str("promo_code", resp.PromoCode).
		Str("order_mode", string(prepared.mode)).
		Str("final_total", resp.FinalTotal.StringFixed(2)).
		Msg("order confirmed")
	return resp, nil
}

func (s *CheckoutService) takeStock(ctx context.Context, tx database.TxQuerier, orderID string, demand []stockDemand) error {
	now := s.now().UTC()
	for _, d := range demand {
		oldQty, newQty, err := s.repos.Stock.DecrementIfAvailable(ctx, tx, d.FlavorID, d.Size, d.Quantity)
		if err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				return &RuleViolationError{Reason: engine.ReasonStockExceeded, FlavorID: d.FlavorID}
			}
			return fmt.Errorf("decrement stock: %w", err)
		}

		err = s.repos.Stock.InsertHistory(ctx, tx, &model.StockHistory{
			ID:           uuid.New(),
			ItemID:       d.FlavorID,
			ItemType:     model.ItemTypeFlavor,
			Size:         d.Size,
			OldQuantity:  oldQty,
			NewQuantity:  newQty,
			ChangeAmount: newQty - oldQty,
			ChangeType:   model.ChangeSubtraction,
			Notes:        "order " + orderID,
			ChangedBy:    "checkout",
			ChangedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("insert stock history: %w", err)
		}
	}
	return nil
}
