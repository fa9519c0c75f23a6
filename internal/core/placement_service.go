package core

import (
	"context"
	"fmt"
	"sort"
)

func (s *slottingService) AssignOneUnit(ctx context.Context, warehouseID, itemID int) (*Assignment, error) {
	if itemID <= 0 {
		return nil, NewError(KindInvalidInput, "invalid item id %d", itemID)
	}

	var result *Assignment
	err := s.withWarehouse(ctx, warehouseID, func() error {
		_, cell, err := s.loadCell(ctx, warehouseID)
		if err != nil {
			return err
		}
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}

		fit := BestFit(item.Dims, cell)
		if fit == nil {
			return NewError(KindItemTooBigForCell, "item %q does not fit in a standard cell of warehouse %d", item.Name, warehouseID)
		}

		locations, err := s.store.ListActiveLocations(ctx, warehouseID)
		if err != nil {
			return err
		}
		stock, err := s.store.ListStock(ctx, warehouseID)
		if err != nil {
			return err
		}

		locationID, ok := ChooseUnitLocation(locations, stock, itemID, fit)
		if !ok {
			return NewError(KindNoFreeLocation, "warehouse %d has no stack with room and no empty location", warehouseID)
		}

		if err := s.store.AddStock(ctx, locationID, itemID, 1, false); err != nil {
			return fmt.Errorf("failed to add unit to location %d: %w", locationID, err)
		}
		if err := s.store.AddWarehouseItemQty(ctx, warehouseID, itemID, 1); err != nil {
			return fmt.Errorf("failed to update warehouse aggregate: %w", err)
		}

		s.logger.Debug("unit placed", "warehouse", warehouseID, "item", itemID, "location", locationID, "max_units", fit.MaxUnits)
		result = &Assignment{LocationID: locationID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ChooseUnitLocation picks where one more unit of itemID goes: the existing
// stack with the lowest location id holding fewer than fit.MaxUnits units,
// else the empty active location with the lowest id.
func ChooseUnitLocation(locations []Location, stock []StockRow, itemID int, fit *Fit) (int, bool) {
	active := make(map[int]bool, len(locations))
	for _, loc := range locations {
		if loc.Active {
			active[loc.ID] = true
		}
	}

	occupied := make(map[int]bool)
	var stacks []StockRow
	for _, row := range stock {
		occupied[row.LocationID] = true
		if row.ItemID == itemID && active[row.LocationID] {
			stacks = append(stacks, row)
		}
	}

	sort.Slice(stacks, func(i, j int) bool { return stacks[i].LocationID < stacks[j].LocationID })
	for _, row := range stacks {
		if row.Qty < fit.MaxUnits {
			return row.LocationID, true
		}
	}

	free := -1
	for _, loc := range locations {
		if !active[loc.ID] || occupied[loc.ID] {
			continue
		}
		if free == -1 || loc.ID < free {
			free = loc.ID
		}
	}
	if free == -1 {
		return 0, false
	}
	return free, true
}
