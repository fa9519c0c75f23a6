package app

import (
	"context"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from the slotting engine. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// PlaceUnit stores one unit of an item in the first location with room.
	PlaceUnit(ctx context.Context, req PlaceUnitRequest) (*PlaceUnitResult, error)

	// OptimizeSimple moves movable units into empty locations, largest first.
	OptimizeSimple(ctx context.Context, warehouseID int) (*MoveListResult, error)

	// RecompactByPriority packs the listed items into the front of the grid.
	RecompactByPriority(ctx context.Context, req RecompactRequest) (*CompactionResult, error)

	// CompactWarehouse re-plans every movable unit of the warehouse.
	CompactWarehouse(ctx context.Context, req CompactRequest) (*MoveListResult, error)

	// GetLayout returns the stored layout, with Layout nil when none exists.
	GetLayout(ctx context.Context, warehouseID int) (*LayoutResult, error)

	// SaveLayout stores a layout and regenerates locations from it.
	SaveLayout(ctx context.Context, req SaveLayoutRequest) (*LocationsResult, error)

	// RegenerateLocations recreates locations from the stored layout.
	RegenerateLocations(ctx context.Context, warehouseID int) (*LocationsResult, error)

	// ListLocations returns active locations and their stock.
	ListLocations(ctx context.Context, req ListLocationsRequest) (*LocationListResult, error)
}
