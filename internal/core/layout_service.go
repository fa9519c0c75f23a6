package core

import (
	"context"
	"fmt"
)

func (s *slottingService) GetLayout(ctx context.Context, warehouseID int) (*Layout, error) {
	if warehouseID <= 0 {
		return nil, NewError(KindInvalidInput, "invalid warehouse id %d", warehouseID)
	}
	if _, err := s.store.GetWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	return s.store.GetLayout(ctx, warehouseID)
}

func (s *slottingService) SaveLayout(ctx context.Context, layout Layout) (int, error) {
	if err := layout.Validate(); err != nil {
		return 0, err
	}

	var created int
	err := s.withWarehouse(ctx, layout.WarehouseID, func() error {
		if _, err := s.store.GetWarehouse(ctx, layout.WarehouseID); err != nil {
			return err
		}
		cells := layout.OpenCells()
		err := s.store.InTx(ctx, func(tx Store) error {
			if err := tx.SaveLayout(ctx, layout); err != nil {
				return fmt.Errorf("failed to save layout: %w", err)
			}
			if err := tx.ReplaceLocations(ctx, layout.WarehouseID, cells); err != nil {
				return fmt.Errorf("failed to regenerate locations: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		created = len(cells)
		s.logger.Info("layout saved", "warehouse", layout.WarehouseID,
			"grid", fmt.Sprintf("%dx%d", layout.GridWidth, layout.GridLength), "locations", created)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *slottingService) RegenerateLocations(ctx context.Context, warehouseID int) (int, error) {
	var created int
	err := s.withWarehouse(ctx, warehouseID, func() error {
		if _, err := s.store.GetWarehouse(ctx, warehouseID); err != nil {
			return err
		}
		layout, err := s.store.GetLayout(ctx, warehouseID)
		if err != nil {
			return err
		}
		if !layout.Usable() {
			return NewError(KindLayoutRequired, "warehouse %d has no usable layout", warehouseID)
		}
		if err := layout.Validate(); err != nil {
			return err
		}
		cells := layout.OpenCells()
		err = s.store.InTx(ctx, func(tx Store) error {
			return tx.ReplaceLocations(ctx, warehouseID, cells)
		})
		if err != nil {
			return fmt.Errorf("failed to regenerate locations: %w", err)
		}
		created = len(cells)
		s.logger.Info("locations regenerated", "warehouse", warehouseID, "locations", created)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
