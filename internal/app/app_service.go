package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"warehouse-slotting/internal/core"
)

type appService struct {
	slotting core.SlottingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(slotting core.SlottingService) ApplicationService {
	return &appService{slotting: slotting}
}

// PlaceUnit stores one unit of an item in the first location with room.
func (s *appService) PlaceUnit(ctx context.Context, req PlaceUnitRequest) (*PlaceUnitResult, error) {
	a, err := s.slotting.AssignOneUnit(ctx, req.WarehouseID, req.ItemID)
	if err != nil {
		return nil, err
	}
	return &PlaceUnitResult{WarehouseID: req.WarehouseID, ItemID: req.ItemID, LocationID: a.LocationID}, nil
}

// OptimizeSimple runs the simple fill heuristic.
func (s *appService) OptimizeSimple(ctx context.Context, warehouseID int) (*MoveListResult, error) {
	res, err := s.slotting.OptimizeSimple(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &MoveListResult{WarehouseID: warehouseID, Moves: res.Moves, Message: res.Message}, nil
}

// RecompactByPriority runs a priority compaction.
func (s *appService) RecompactByPriority(ctx context.Context, req RecompactRequest) (*CompactionResult, error) {
	res, err := s.slotting.RecompactByPriority(ctx, req.WarehouseID, req.Items)
	if err != nil {
		return nil, err
	}
	return &CompactionResult{WarehouseID: req.WarehouseID, Relocations: res.Relocations, Message: res.Message}, nil
}

// CompactWarehouse runs the whole-warehouse compaction.
func (s *appService) CompactWarehouse(ctx context.Context, req CompactRequest) (*MoveListResult, error) {
	res, err := s.slotting.CompactAll(ctx, req.WarehouseID, req.DryRun)
	if err != nil {
		return nil, err
	}
	return &MoveListResult{WarehouseID: req.WarehouseID, Moves: res.Moves, Message: res.Message, DryRun: res.DryRun}, nil
}

// GetLayout returns the stored layout.
func (s *appService) GetLayout(ctx context.Context, warehouseID int) (*LayoutResult, error) {
	layout, err := s.slotting.GetLayout(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &LayoutResult{WarehouseID: warehouseID, Layout: layout}, nil
}

// SaveLayout validates the cell keys, stores the layout and regenerates
// locations.
func (s *appService) SaveLayout(ctx context.Context, req SaveLayoutRequest) (*LocationsResult, error) {
	states := make(map[int]core.CellState, len(req.Cells))
	for key, state := range req.Cells {
		idx, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || idx < 0 {
			return nil, core.NewError(core.KindInvalidInput, "cell key %q is not a non-negative index", key)
		}
		states[idx] = core.CellState(strings.ToUpper(string(state)))
	}

	created, err := s.slotting.SaveLayout(ctx, core.Layout{
		WarehouseID: req.WarehouseID,
		GridWidth:   req.Width,
		GridLength:  req.Length,
		Cells:       core.NewCellMap(states),
	})
	if err != nil {
		return nil, err
	}
	return &LocationsResult{
		WarehouseID: req.WarehouseID,
		Created:     created,
		Message:     fmt.Sprintf("layout saved: %d locations created", created),
	}, nil
}

// RegenerateLocations recreates locations from the stored layout.
func (s *appService) RegenerateLocations(ctx context.Context, warehouseID int) (*LocationsResult, error) {
	created, err := s.slotting.RegenerateLocations(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &LocationsResult{
		WarehouseID: warehouseID,
		Created:     created,
		Message:     fmt.Sprintf("%d locations regenerated", created),
	}, nil
}

// ListLocations returns active locations and their stock.
func (s *appService) ListLocations(ctx context.Context, req ListLocationsRequest) (*LocationListResult, error) {
	views, err := s.slotting.ListLocations(ctx, req.WarehouseID, req.ExpandUnits)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{WarehouseID: req.WarehouseID, Locations: views}, nil
}
