package app

import "warehouse-slotting/internal/core"

// PlaceUnitResult is returned by PlaceUnit.
type PlaceUnitResult struct {
	WarehouseID int `json:"warehouse_id"`
	ItemID      int `json:"item_id"`
	LocationID  int `json:"location_id"`
}

// MoveListResult is returned by OptimizeSimple and CompactWarehouse.
type MoveListResult struct {
	WarehouseID int         `json:"warehouse_id"`
	Moves       []core.Move `json:"moves"`
	Message     string      `json:"message"`
	DryRun      bool        `json:"dry_run"`
}

// CompactionResult is returned by RecompactByPriority.
type CompactionResult struct {
	WarehouseID int               `json:"warehouse_id"`
	Relocations []core.Relocation `json:"relocations"`
	Message     string            `json:"message"`
}

// LayoutResult is returned by GetLayout.
type LayoutResult struct {
	WarehouseID int          `json:"warehouse_id"`
	Layout      *core.Layout `json:"layout"`
}

// LocationsResult is returned by SaveLayout and RegenerateLocations.
type LocationsResult struct {
	WarehouseID int    `json:"warehouse_id"`
	Created     int    `json:"locations_created"`
	Message     string `json:"message"`
}

// LocationListResult is returned by ListLocations.
type LocationListResult struct {
	WarehouseID int                 `json:"warehouse_id"`
	Locations   []core.LocationView `json:"locations"`
}
