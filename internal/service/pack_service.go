package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/engine"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// PackService validates and edits flavor selections for packs.
type PackService struct {
	packRepo     PackRepositoryInterface
	stockRepo    StockRepositoryInterface
	settingsRepo SettingsRepositoryInterface
}

// NewPackService creates a new PackService.
func NewPackService(packRepo PackRepositoryInterface, stockRepo StockRepositoryInterface, settingsRepo SettingsRepositoryInterface) *PackService {
	return &PackService{packRepo: packRepo, stockRepo: stockRepo, settingsRepo: settingsRepo}
}

type packContext struct {
	pack   model.Pack
	mode   model.OrderMode
	lookup engine.StockLookup
}

// checkSelectionSizes rejects selections sized differently from the pack.
// An empty size means the pack size.
func checkSelectionSizes(pack *model.Pack, selections []model.FlavorSelection) error {
	for _, sel := range selections {
		if sel.Size != "" && sel.Size != pack.Size {
			return validationError("flavor %s has size %s but pack %s holds %s units", sel.FlavorID, sel.Size, pack.ID, pack.Size)
		}
	}
	return nil
}

func (s *PackService) load(ctx context.Context, packID string, selections []model.FlavorSelection, extraFlavor string) (*packContext, error) {
	pack, err := s.packRepo.GetByID(ctx, packID)
	if err != nil {
		return nil, fmt.Errorf("get pack: %w", err)
	}
	if pack == nil || !pack.Active {
		return nil, ErrPackNotFound
	}
	if err := checkSelectionSizes(pack, selections); err != nil {
		return nil, err
	}

	mode, err := s.settingsRepo.GetOrderMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("get order mode: %w", err)
	}

	ids := make([]string, 0, len(selections)+1)
	for _, sel := range selections {
		ids = append(ids, sel.FlavorID)
	}
	if extraFlavor != "" {
		ids = append(ids, extraFlavor)
	}
	rows, err := s.stockRepo.ListByFlavors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	byKey := make(map[string]model.FlavorStock, len(rows))
	for _, r := range rows {
		byKey[r.FlavorID+"|"+string(r.Size)] = r
	}

	return &packContext{
		pack: *pack,
		mode: mode,
		lookup: func(flavorID string, size model.Size) (model.FlavorStock, bool) {
			st, ok := byKey[flavorID+"|"+string(size)]
			return st, ok
		},
	}, nil
}

func (pc *packContext) response(selections []model.FlavorSelection) *model.PackSelectionResponse {
	res := engine.ValidateSelection(pc.pack, selections, pc.lookup, pc.mode)
	current := engine.NewPackSelection(pc.pack, selections).Selections()
	return &model.PackSelectionResponse{
		PackID:     pc.pack.ID,
		Required:   pc.pack.FlavorCount,
		Selected:   res.Selected,
		Valid:      res.Valid,
		Reason:     string(res.Reason),
		Selections: current,
	}
}

// Validate checks a complete selection for a pack.
func (s *PackService) Validate(ctx context.Context, packID string, req *model.PackSelectionRequest) (*model.PackSelectionResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	pc, err := s.load(ctx, packID, req.Selections, "")
	if err != nil {
		return nil, err
	}
	return pc.response(req.Selections), nil
}

// AddFlavor adds one unit of a flavor to the selection. A full pack or a
// flavor at its stock limit yields a *RuleViolationError.
func (s *PackService) AddFlavor(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error) {
	if req == nil || req.FlavorID == "" {
		return nil, ErrInvalidRequest
	}
	pc, err := s.load(ctx, packID, req.Selections, req.FlavorID)
	if err != nil {
		return nil, err
	}

	stock, _ := pc.lookup(req.FlavorID, pc.pack.Size)
	sel := engine.NewPackSelection(pc.pack, req.Selections)
	if err := sel.Add(req.FlavorID, engine.MaxSelectable(stock, pc.mode)); err != nil {
		var ruleErr *engine.RuleError
		if errors.As(err, &ruleErr) {
			return nil, &RuleViolationError{Reason: ruleErr.Reason, PackID: packID, FlavorID: ruleErr.FlavorID}
		}
		return nil, err
	}
	return pc.response(sel.Selections()), nil
}

// RemoveFlavor takes one unit of a flavor out of the selection.
func (s *PackService) RemoveFlavor(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error) {
	if req == nil || req.FlavorID == "" {
		return nil, ErrInvalidRequest
	}
	pc, err := s.load(ctx, packID, req.Selections, "")
	if err != nil {
		return nil, err
	}

	sel := engine.NewPackSelection(pc.pack, req.Selections)
	if !sel.Remove(req.FlavorID) {
		return nil, validationError("flavor %s is not selected", req.FlavorID)
	}
	return pc.response(sel.Selections()), nil
}
