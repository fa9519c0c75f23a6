package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type fillUnit struct {
	itemID int
	from   int
	volume decimal.Decimal
}

// PlanSimpleFill assigns movable units, one per empty location, largest item
// volume first. Locations are consumed in the given order. Volume is the raw
// w*l*h of the item, not its fit-derived capacity. Units left over once the
// empty locations run out stay where they are.
func PlanSimpleFill(locations []Location, stock []StockRow) []Move {
	occupied := make(map[int]bool, len(stock))
	for _, row := range stock {
		occupied[row.LocationID] = true
	}
	free := make([]int, 0, len(locations))
	for _, loc := range locations {
		if !occupied[loc.ID] {
			free = append(free, loc.ID)
		}
	}

	var units []fillUnit
	for _, row := range stock {
		if !row.Movable {
			continue
		}
		vol := row.ItemDims.Volume()
		for k := 0; k < row.Qty; k++ {
			units = append(units, fillUnit{itemID: row.ItemID, from: row.LocationID, volume: vol})
		}
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].volume.GreaterThan(units[j].volume) })

	moves := make([]Move, 0, min(len(units), len(free)))
	next := 0
	for _, u := range units {
		if next >= len(free) {
			break
		}
		to := free[next]
		next++
		if to == u.from {
			continue
		}
		moves = append(moves, Move{ItemID: u.itemID, From: u.from, To: to, Qty: 1})
	}
	return moves
}

func (s *slottingService) OptimizeSimple(ctx context.Context, warehouseID int) (*MoveResult, error) {
	var result *MoveResult
	err := s.withWarehouse(ctx, warehouseID, func() error {
		if _, err := s.store.GetWarehouse(ctx, warehouseID); err != nil {
			return err
		}
		locations, err := s.store.ListActiveLocations(ctx, warehouseID)
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			result = &MoveResult{Moves: []Move{}, Message: "warehouse has no active locations (check the layout)"}
			return nil
		}

		layout, err := s.store.GetLayout(ctx, warehouseID)
		if err != nil {
			return err
		}
		locations = destinations(locations, layout)
		if len(locations) == 0 {
			result = &MoveResult{Moves: []Move{}, Message: "no destination locations: every cell is blocked or occupied in the layout"}
			return nil
		}

		stock, err := s.store.ListStock(ctx, warehouseID)
		if err != nil {
			return err
		}

		moves := PlanSimpleFill(locations, stock)
		if len(moves) == 0 {
			result = &MoveResult{Moves: moves, Message: "no movable units to relocate"}
			return nil
		}

		// Applied one unit at a time; a failure keeps the moves before it.
		for i, m := range moves {
			if err := s.store.RemoveStock(ctx, m.From, m.ItemID, m.Qty); err != nil {
				return fmt.Errorf("failed to apply move %d of %d: %w", i+1, len(moves), err)
			}
			if err := s.store.AddStock(ctx, m.To, m.ItemID, m.Qty, false); err != nil {
				return fmt.Errorf("failed to apply move %d of %d: %w", i+1, len(moves), err)
			}
		}

		s.logger.Debug("simple fill applied", "warehouse", warehouseID, "moves", len(moves))
		result = &MoveResult{Moves: moves, Message: fmt.Sprintf("processed %d item moves", len(moves))}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
