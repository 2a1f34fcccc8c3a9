package engine

import (
	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// SelectionResult is the outcome of validating a pack selection.
type SelectionResult struct {
	Valid    bool
	Reason   Reason
	FlavorID string // set for STOCK_EXCEEDED
	Selected int
	Required int
}

// ValidateSelection checks that selections fill the pack exactly and that no
// flavor exceeds what stock allows under mode. Over-selection is reported
// before per-flavor stock, which is reported before under-selection.
func ValidateSelection(pack model.Pack, selections []model.FlavorSelection, lookup StockLookup, mode model.OrderMode) SelectionResult {
	merged := mergeSelections(pack.Size, selections)
	total := 0
	for _, s := range merged {
		total += s.Quantity
	}
	res := SelectionResult{Selected: total, Required: pack.FlavorCount}

	if total > pack.FlavorCount {
		res.Reason = ReasonExcessSelection
		return res
	}
	for _, s := range merged {
		stock := lookupStock(lookup, s.FlavorID, s.Size)
		if !CanFulfill(stock, s.Quantity, mode) {
			res.Reason = ReasonStockExceeded
			res.FlavorID = s.FlavorID
			return res
		}
	}
	if total < pack.FlavorCount {
		res.Reason = ReasonInsufficientSelection
		return res
	}
	res.Valid = true
	return res
}

func lookupStock(lookup StockLookup, flavorID string, size model.Size) model.FlavorStock {
	if lookup != nil {
		if stock, ok := lookup(flavorID, size); ok {
			return stock
		}
	}
	return model.FlavorStock{FlavorID: flavorID, Size: size}
}

// mergeSelections folds duplicate flavor entries together and drops
// non-positive quantities. Every unit of a pack has the pack's size, so any
// size on the input is replaced by packSize. Order of first appearance is kept.
func mergeSelections(packSize model.Size, selections []model.FlavorSelection) []model.FlavorSelection {
	out := make([]model.FlavorSelection, 0, len(selections))
	index := make(map[string]int, len(selections))
	for _, s := range selections {
		if s.Quantity <= 0 {
			continue
		}
		s.Size = packSize
		key := s.FlavorID
		if i, ok := index[key]; ok {
			out[i].Quantity += s.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, s)
	}
	return out
}

// PackSelection is the step-by-step selection state for one pack.
type PackSelection struct {
	pack    model.Pack
	entries []model.FlavorSelection
}

// NewPackSelection starts from an existing selection, merging duplicates.
func NewPackSelection(pack model.Pack, existing []model.FlavorSelection) *PackSelection {
	return &PackSelection{pack: pack, entries: mergeSelections(pack.Size, existing)}
}

// Total returns the number of units selected.
func (p *PackSelection) Total() int {
	n := 0
	for _, e := range p.entries {
		n += e.Quantity
	}
	return n
}

// Remaining returns how many units are still needed.
func (p *PackSelection) Remaining() int {
	if r := p.pack.FlavorCount - p.Total(); r > 0 {
		return r
	}
	return 0
}

// Quantity returns the selected units of a flavor.
func (p *PackSelection) Quantity(flavorID string) int {
	if i := p.find(flavorID); i >= 0 {
		return p.entries[i].Quantity
	}
	return 0
}

// Add selects one more unit of flavorID. A full pack rejects the add with
// EXCESS_SELECTION even when the flavor has stock left; otherwise the flavor
// may not go past maxSelectable.
func (p *PackSelection) Add(flavorID string, maxSelectable int) error {
	if p.Total() >= p.pack.FlavorCount {
		return &RuleError{Reason: ReasonExcessSelection, FlavorID: flavorID}
	}
	i := p.find(flavorID)
	current := 0
	if i >= 0 {
		current = p.entries[i].Quantity
	}
	if current+1 > maxSelectable {
		return &RuleError{Reason: ReasonStockExceeded, FlavorID: flavorID}
	}
	if i >= 0 {
		p.entries[i].Quantity++
		return nil
	}
	p.entries = append(p.entries, model.FlavorSelection{FlavorID: flavorID, Size: p.pack.Size, Quantity: 1})
	return nil
}

// Remove drops one unit of flavorID, deleting the entry when it reaches zero.
// It reports whether anything was removed.
func (p *PackSelection) Remove(flavorID string) bool {
	i := p.find(flavorID)
	if i < 0 {
		return false
	}
	if p.entries[i].Quantity <= 1 {
		p.entries = append(p.entries[:i], p.entries[i+1:]...)
		return true
	}
	p.entries[i].Quantity--
	return true
}

// Selections returns a copy of the current selection.
func (p *PackSelection) Selections() []model.FlavorSelection {
	out := make([]model.FlavorSelection, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p *PackSelection) find(flavorID string) int {
	for i, e := range p.entries {
		if e.FlavorID == flavorID {
			return i
		}
	}
	return -1
}
