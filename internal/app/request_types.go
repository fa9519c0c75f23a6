package app

import "warehouse-slotting/internal/core"

// PlaceUnitRequest is the input for placing one unit automatically.
type PlaceUnitRequest struct {
	WarehouseID int `json:"-"`
	ItemID      int `json:"item_id" jsonschema:"minimum=1" jsonschema_description:"Item to place"`
}

// RecompactRequest is the input for a priority compaction.
type RecompactRequest struct {
	WarehouseID int                 `json:"-"`
	Items       []core.ItemPriority `json:"items" jsonschema:"minItems=1" jsonschema_description:"Items to compact with their priorities"`
}

// CompactRequest is the input for a whole-warehouse compaction.
type CompactRequest struct {
	WarehouseID int  `json:"-"`
	DryRun      bool `json:"dry_run" jsonschema_description:"Return the planned moves without applying them"`
}

// SaveLayoutRequest is the input for storing a warehouse layout.
// Cells maps a linear index (y*width + x) to one of D, A, B, O.
type SaveLayoutRequest struct {
	WarehouseID int                       `json:"-"`
	Width       int                       `json:"width" jsonschema:"minimum=1" jsonschema_description:"Grid cells along the warehouse width"`
	Length      int                       `json:"length" jsonschema:"minimum=1" jsonschema_description:"Grid cells along the warehouse length"`
	Cells       map[string]core.CellState `json:"cells,omitempty" jsonschema_description:"Cell states keyed by linear index; absent cells are available (D)"`
}

// ListLocationsRequest is the input for the location view.
type ListLocationsRequest struct {
	WarehouseID int
	ExpandUnits bool
}
