package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// TetrisPlan is the outcome of PlanTetrisCompaction.
type TetrisPlan struct {
	// Targets is the planned content of every cell the plan fills, one item
	// per cell, in front-to-back order.
	Targets []StockDelta
	// Moves turns the current stock into Targets. Units already in their
	// target cell are not moved.
	Moves []Move
	// Locked lists cells left untouched: they hold non-movable stock or
	// more than one item.
	Locked []int
}

type tetrisCell struct {
	loc    Location
	items  map[int]int
	locked bool
}

type tetrisItem struct {
	itemID   int
	priority int
	movable  int
	capacity int
	volume   decimal.Decimal
}

type stockSource struct {
	locationID int
	qty        int
}

// PlanTetrisCompaction re-plans every movable unit of a warehouse from
// scratch. Movable stock of each item is packed into consecutive unlocked
// cells from the front of the grid, one item per cell and up to the fit
// capacity, ordered by (priority desc, volume desc). Units are drawn from
// the target cell itself first, then from the back of the grid.
//
// Stock at locations not in locations is ignored. cell must not be nil.
func PlanTetrisCompaction(locations []Location, stock []StockRow, aggregates []WarehouseItem, items map[int]Item, cell *CellDims) (*TetrisPlan, error) {
	if cell == nil {
		return nil, NewError(KindLayoutRequired, "compaction needs a warehouse layout with a standard cell size")
	}

	cells := make(map[int]*tetrisCell, len(locations))
	for _, loc := range locations {
		cells[loc.ID] = &tetrisCell{loc: loc, items: make(map[int]int)}
	}
	for _, row := range stock {
		c, ok := cells[row.LocationID]
		if !ok || row.Qty <= 0 {
			continue
		}
		c.items[row.ItemID] += row.Qty
		if !row.Movable {
			c.locked = true
		}
	}

	fixed := make(map[int]int)
	plan := &TetrisPlan{}
	for _, loc := range locations {
		c := cells[loc.ID]
		if len(c.items) > 1 {
			c.locked = true
		}
		if !c.locked {
			continue
		}
		plan.Locked = append(plan.Locked, loc.ID)
		for itemID, qty := range c.items {
			fixed[itemID] += qty
		}
	}

	aggs := append([]WarehouseItem(nil), aggregates...)
	sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].ItemID < aggs[j].ItemID })

	pack := make([]tetrisItem, 0, len(aggs))
	for _, agg := range aggs {
		movable := max(0, agg.Qty-fixed[agg.ItemID])
		if movable == 0 {
			continue
		}
		item, ok := items[agg.ItemID]
		if !ok || !item.Dims.Complete() {
			return nil, NewError(KindItemDimsMissing, "item %d has no complete dimensions", agg.ItemID)
		}
		fit := BestFit(item.Dims, cell)
		if fit == nil {
			return nil, NewError(KindItemTooBigForCell, "item %d does not fit in a standard cell", agg.ItemID)
		}
		pack = append(pack, tetrisItem{
			itemID:   agg.ItemID,
			priority: agg.Priority,
			movable:  movable,
			capacity: fit.Capacity(),
			volume:   item.Dims.Volume(),
		})
	}
	sort.SliceStable(pack, func(i, j int) bool {
		if pack[i].priority != pack[j].priority {
			return pack[i].priority > pack[j].priority
		}
		return pack[i].volume.GreaterThan(pack[j].volume)
	})

	free := make([]Location, 0, len(locations))
	for _, loc := range locations {
		if !cells[loc.ID].locked {
			free = append(free, loc)
		}
	}
	sort.SliceStable(free, func(i, j int) bool { return frontOf(free[i], free[j]) })

	next := 0
	for _, it := range pack {
		for remaining := it.movable; remaining > 0; {
			if next >= len(free) {
				return nil, NewError(KindNoSpaceToCompact, "not enough free cells: item %d still has %d units to place", it.itemID, remaining)
			}
			put := min(it.capacity, remaining)
			plan.Targets = append(plan.Targets, StockDelta{LocationID: free[next].ID, ItemID: it.itemID, Qty: put})
			next++
			remaining -= put
		}
	}

	// Sources run from the back of the grid.
	back := make([]Location, len(free))
	copy(back, free)
	sort.SliceStable(back, func(i, j int) bool { return frontOf(back[j], back[i]) })

	sources := make(map[int][]*stockSource)
	for _, loc := range back {
		for itemID, qty := range cells[loc.ID].items {
			sources[itemID] = append(sources[itemID], &stockSource{locationID: loc.ID, qty: qty})
		}
	}

	for _, t := range plan.Targets {
		src := sources[t.ItemID]
		remaining := t.Qty

		for i, s := range src {
			if s.locationID != t.LocationID {
				continue
			}
			take := min(s.qty, remaining)
			s.qty -= take
			remaining -= take
			if s.qty == 0 {
				src = append(src[:i], src[i+1:]...)
			}
			break
		}

		for remaining > 0 && len(src) > 0 {
			s := src[0]
			take := min(s.qty, remaining)
			plan.Moves = append(plan.Moves, Move{ItemID: t.ItemID, From: s.locationID, To: t.LocationID, Qty: take})
			s.qty -= take
			remaining -= take
			if s.qty == 0 {
				src = src[1:]
			}
		}
		sources[t.ItemID] = src

		if remaining > 0 {
			return nil, NewError(KindInconsistentStock, "item %d is short by %d units across its locations", t.ItemID, remaining)
		}
	}

	// Movable units the aggregates do not account for would end up sharing
	// a cell with another item's target.
	leftover := make([]int, 0, len(sources))
	for itemID, src := range sources {
		for _, s := range src {
			if s.qty > 0 {
				leftover = append(leftover, itemID)
				break
			}
		}
	}
	if len(leftover) > 0 {
		sort.Ints(leftover)
		extra := 0
		for _, s := range sources[leftover[0]] {
			extra += s.qty
		}
		return nil, NewError(KindInconsistentStock, "item %d has %d units at its locations beyond the warehouse total", leftover[0], extra)
	}
	return plan, nil
}

// frontOf orders locations by (y, x, id) ascending.
func frontOf(a, b Location) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.ID < b.ID
}

func (s *slottingService) CompactAll(ctx context.Context, warehouseID int, dryRun bool) (*MoveResult, error) {
	var result *MoveResult
	err := s.withWarehouse(ctx, warehouseID, func() error {
		_, cell, err := s.loadCell(ctx, warehouseID)
		if err != nil {
			return err
		}
		if cell == nil {
			return NewError(KindLayoutRequired, "warehouse %d needs a layout and dimensions to compact", warehouseID)
		}

		locations, err := s.store.ListActiveLocations(ctx, warehouseID)
		if err != nil {
			return err
		}
		stock, err := s.store.ListStock(ctx, warehouseID)
		if err != nil {
			return err
		}
		aggregates, err := s.store.ListWarehouseItems(ctx, warehouseID)
		if err != nil {
			return err
		}
		ids := make([]int, 0, len(aggregates))
		for _, a := range aggregates {
			ids = append(ids, a.ItemID)
		}
		items, err := s.store.GetItems(ctx, ids)
		if err != nil {
			return err
		}

		plan, err := PlanTetrisCompaction(locations, stock, aggregates, items, cell)
		if err != nil {
			return err
		}
		moves := plan.Moves
		if moves == nil {
			moves = []Move{}
		}

		if dryRun {
			result = &MoveResult{Moves: moves, DryRun: true, Message: fmt.Sprintf("dry run: %d moves planned", len(moves))}
			return nil
		}

		err = s.store.InTx(ctx, func(tx Store) error {
			for i, m := range moves {
				if err := tx.RemoveStock(ctx, m.From, m.ItemID, m.Qty); err != nil {
					return fmt.Errorf("failed to apply move %d of %d: %w", i+1, len(moves), err)
				}
				if err := tx.AddStock(ctx, m.To, m.ItemID, m.Qty, true); err != nil {
					return fmt.Errorf("failed to apply move %d of %d: %w", i+1, len(moves), err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		s.logger.Debug("tetris compaction applied", "warehouse", warehouseID,
			"targets", len(plan.Targets), "locked", len(plan.Locked), "moves", len(moves))
		result = &MoveResult{Moves: moves, Message: fmt.Sprintf("compaction applied: %d moves", len(moves))}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
