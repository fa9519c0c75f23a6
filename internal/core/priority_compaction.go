package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// StockDelta is a quantity change of one item at one location.
type StockDelta struct {
	LocationID int `json:"location_id"`
	ItemID     int `json:"item_id"`
	Qty        int `json:"qty"`
}

// PriorityPlan is the outcome of PlanPriorityCompaction. Drains empty every
// relocated row; Fills put the same units back in front-of-grid order. When
// Shortfalls is non-empty the plan must not be applied.
type PriorityPlan struct {
	Drains      []StockDelta
	Fills       []StockDelta
	Relocations []Relocation
	Shortfalls  []Shortfall
}

// mixedCell marks a destination whose remaining stock already mixes items.
const mixedCell = -1

type packItem struct {
	itemID   int
	qty      int
	priority int
	volume   decimal.Decimal
}

// PlanPriorityCompaction re-slots the movable stock of every item in
// priorities into dest, which must be in front-to-back order. Items are
// packed by (priority desc, volume desc). A destination's vertical budget is
// the cell height minus the height of stock that stays there; with a nil cell
// the budget is unbounded.
func PlanPriorityCompaction(dest []Location, stock []StockRow, priorities map[int]int, cell *CellDims, policy PlannerPolicy) *PriorityPlan {
	dims := make(map[int]Dims)
	contents := make(map[int]map[int]int)
	for _, row := range stock {
		if _, ok := dims[row.ItemID]; !ok {
			dims[row.ItemID] = row.ItemDims
		}
		if row.Qty <= 0 {
			continue
		}
		if contents[row.LocationID] == nil {
			contents[row.LocationID] = make(map[int]int)
		}
		contents[row.LocationID][row.ItemID] += row.Qty
	}

	totals := make(map[int]*packItem)
	drains := make(map[int]map[int]int)
	for _, row := range stock {
		prio, ok := priorities[row.ItemID]
		if !ok || !row.Movable || row.Qty <= 0 {
			continue
		}
		t, ok := totals[row.ItemID]
		if !ok {
			t = &packItem{itemID: row.ItemID, priority: prio, volume: dims[row.ItemID].Volume()}
			totals[row.ItemID] = t
		}
		t.qty += row.Qty
		if drains[row.LocationID] == nil {
			drains[row.LocationID] = make(map[int]int)
		}
		drains[row.LocationID][row.ItemID] += row.Qty
	}

	fits := make(map[int]*Fit)
	fitOf := func(itemID int) *Fit {
		if f, ok := fits[itemID]; ok {
			return f
		}
		f := BestFit(dims[itemID], cell)
		fits[itemID] = f
		return f
	}

	exclusive := policy.ExclusiveCells
	if cell == nil {
		exclusive = policy.ExclusiveWhenUnconstrained
	}

	base := make(map[int]decimal.Decimal, len(dest))
	reserved := make(map[int]int)
	for _, loc := range dest {
		h := decimal.Zero
		var staying []int
		for itemID, qty := range contents[loc.ID] {
			left := qty - drains[loc.ID][itemID]
			if left <= 0 {
				continue
			}
			staying = append(staying, itemID)
			if cell == nil {
				continue
			}
			if f := fitOf(itemID); f != nil {
				h = h.Add(f.Height.Mul(decimal.NewFromInt(int64(left))))
			}
		}
		base[loc.ID] = h
		if exclusive {
			switch len(staying) {
			case 0:
			case 1:
				reserved[loc.ID] = staying[0]
			default:
				reserved[loc.ID] = mixedCell
			}
		}
	}

	order := make([]*packItem, 0, len(totals))
	for _, t := range totals {
		order = append(order, t)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if c := a.volume.Cmp(b.volume); c != 0 {
			return c > 0
		}
		return a.itemID < b.itemID
	})

	added := make(map[int]decimal.Decimal)
	planned := make(map[[2]int]int)
	var fillOrder [][2]int

	capUnits := func(locID, itemID int) int {
		if exclusive {
			if r, ok := reserved[locID]; ok && r != itemID {
				return 0
			}
		}
		if cell == nil {
			return math.MaxInt
		}
		f := fitOf(itemID)
		if f == nil || !f.Height.IsPositive() {
			return 0
		}
		free := cell.Height.Sub(base[locID]).Sub(added[locID])
		if !free.IsPositive() {
			return 0
		}
		return floorDiv(free, f.Height)
	}

	place := func(locID, itemID, qty int) int {
		put := min(qty, capUnits(locID, itemID))
		if put <= 0 {
			return 0
		}
		key := [2]int{locID, itemID}
		if _, ok := planned[key]; !ok {
			fillOrder = append(fillOrder, key)
		}
		planned[key] += put
		if exclusive {
			reserved[locID] = itemID
		}
		if cell != nil {
			added[locID] = added[locID].Add(fitOf(itemID).Height.Mul(decimal.NewFromInt(int64(put))))
		}
		return put
	}

	plan := &PriorityPlan{}
	ptr := 0
	for _, it := range order {
		remaining := it.qty

		for remaining > 0 && ptr < len(dest) {
			locID := dest[ptr].ID
			put := place(locID, it.itemID, remaining)
			remaining -= put
			if put == 0 || capUnits(locID, it.itemID) == 0 {
				ptr++
			}
		}

		// Second sweep over every destination picks up room the cursor
		// already passed.
		for i := 0; i < len(dest) && remaining > 0; i++ {
			remaining -= place(dest[i].ID, it.itemID, remaining)
		}

		if remaining > 0 {
			plan.Shortfalls = append(plan.Shortfalls, Shortfall{ItemID: it.itemID, Priority: it.priority, Missing: remaining})
		}
		plan.Relocations = append(plan.Relocations, Relocation{ItemID: it.itemID, Priority: it.priority, QtyRelocated: it.qty})
	}

	for locID, m := range drains {
		for itemID, qty := range m {
			plan.Drains = append(plan.Drains, StockDelta{LocationID: locID, ItemID: itemID, Qty: qty})
		}
	}
	sort.Slice(plan.Drains, func(i, j int) bool {
		if plan.Drains[i].LocationID != plan.Drains[j].LocationID {
			return plan.Drains[i].LocationID < plan.Drains[j].LocationID
		}
		return plan.Drains[i].ItemID < plan.Drains[j].ItemID
	})
	for _, key := range fillOrder {
		plan.Fills = append(plan.Fills, StockDelta{LocationID: key[0], ItemID: key[1], Qty: planned[key]})
	}
	return plan
}

func (s *slottingService) RecompactByPriority(ctx context.Context, warehouseID int, priorities []ItemPriority) (*CompactionSummary, error) {
	if warehouseID <= 0 {
		return nil, NewError(KindInvalidInput, "invalid warehouse id %d", warehouseID)
	}
	if len(priorities) == 0 {
		return nil, NewError(KindInvalidInput, "priority list is empty")
	}
	byItem := make(map[int]int, len(priorities))
	for _, p := range priorities {
		if p.ItemID <= 0 {
			continue
		}
		byItem[p.ItemID] = p.Priority
	}
	if len(byItem) == 0 {
		return nil, NewError(KindInvalidInput, "priority list holds no valid item id")
	}

	var summary *CompactionSummary
	err := s.withWarehouse(ctx, warehouseID, func() error {
		layout, cell, err := s.loadCell(ctx, warehouseID)
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(byItem))
		for id := range byItem {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			if err := s.store.SetWarehouseItemPriority(ctx, warehouseID, id, byItem[id]); err != nil {
				return fmt.Errorf("failed to save priority of item %d: %w", id, err)
			}
		}

		locations, err := s.store.ListActiveLocations(ctx, warehouseID)
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			summary = &CompactionSummary{Relocations: []Relocation{}, Message: "warehouse has no active locations (check the layout)"}
			return nil
		}
		dest := destinations(locations, layout)
		if len(dest) == 0 {
			summary = &CompactionSummary{Relocations: []Relocation{}, Message: "no destination locations: every cell is blocked or occupied in the layout"}
			return nil
		}

		stock, err := s.store.ListStock(ctx, warehouseID)
		if err != nil {
			return err
		}
		if len(stock) == 0 {
			summary = &CompactionSummary{Relocations: []Relocation{}, Message: "warehouse holds no stock"}
			return nil
		}

		plan := PlanPriorityCompaction(dest, stock, byItem, cell, s.policy)
		if len(plan.Relocations) == 0 {
			summary = &CompactionSummary{Relocations: []Relocation{}, Message: "none of the prioritised items has movable stock"}
			return nil
		}
		if len(plan.Shortfalls) > 0 {
			return WrapError(KindNoSpaceToCompact, &ShortfallError{Shortfalls: plan.Shortfalls},
				"not enough room to compact every prioritised item; nothing was changed")
		}

		err = s.store.InTx(ctx, func(tx Store) error {
			for _, d := range plan.Drains {
				if err := tx.RemoveStock(ctx, d.LocationID, d.ItemID, d.Qty); err != nil {
					return fmt.Errorf("failed to drain location %d: %w", d.LocationID, err)
				}
			}
			for _, f := range plan.Fills {
				if err := tx.AddStock(ctx, f.LocationID, f.ItemID, f.Qty, true); err != nil {
					return fmt.Errorf("failed to fill location %d: %w", f.LocationID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		s.logger.Debug("priority compaction applied", "warehouse", warehouseID,
			"items", len(plan.Relocations), "drains", len(plan.Drains), "fills", len(plan.Fills))
		summary = &CompactionSummary{
			Relocations: plan.Relocations,
			Message:     "compacted from the front of the grid: higher priority first, no gaps",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
