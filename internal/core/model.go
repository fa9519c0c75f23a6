package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dims holds the three physical extents of a box-shaped thing.
type Dims struct {
	Width  decimal.Decimal `json:"width"`
	Length decimal.Decimal `json:"length"`
	Height decimal.Decimal `json:"height"`
}

// Complete reports whether every extent is strictly positive.
func (d Dims) Complete() bool {
	return d.Width.IsPositive() && d.Length.IsPositive() && d.Height.IsPositive()
}

// Volume returns Width*Length*Height.
func (d Dims) Volume() decimal.Decimal {
	return d.Width.Mul(d.Length).Mul(d.Height)
}

// Warehouse is the physical building that owns a layout grid.
// It is read-only to the slotting engine.
type Warehouse struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Width  decimal.Decimal `json:"width"`
	Length decimal.Decimal `json:"length"`
	Height decimal.Decimal `json:"height"`
}

// Item is a storable article with physical dimensions.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Dims Dims   `json:"dims"`
}

// Location is one grid cell materialised as an addressable slot.
type Location struct {
	ID          int    `json:"id"`
	WarehouseID int    `json:"warehouse_id"`
	Name        string `json:"name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Active      bool   `json:"active"`
}

// StockRow is a read view of a location_stock row joined with the item's
// dimensions and the warehouse-level priority of that item.
type StockRow struct {
	LocationID int       `json:"location_id"`
	ItemID     int       `json:"item_id"`
	ItemName   string    `json:"item_name"`
	Qty        int       `json:"qty"`
	Movable    bool      `json:"movable"`
	Priority   int       `json:"priority"`
	ItemDims   Dims      `json:"item_dims"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WarehouseItem is the per-warehouse aggregate for an item: total quantity and
// compaction priority (higher = closer to the front). Quantity is advisory;
// the sum of location stock is the source of truth.
type WarehouseItem struct {
	WarehouseID int `json:"warehouse_id"`
	ItemID      int `json:"item_id"`
	Qty         int `json:"qty"`
	Priority    int `json:"priority"`
}

// ItemPriority is one entry of a caller-supplied priority list.
type ItemPriority struct {
	ItemID   int `json:"item_id" jsonschema:"minimum=1" jsonschema_description:"Item to compact"`
	Priority int `json:"priority" jsonschema_description:"Higher values are placed closer to the front of the grid"`
}

// Move relocates Qty units of an item between two locations.
type Move struct {
	ItemID int `json:"item_id"`
	From   int `json:"from_location"`
	To     int `json:"to_location"`
	Qty    int `json:"qty"`
}

// MoveResult is returned by the simple fill heuristic and tetris compaction.
type MoveResult struct {
	Moves   []Move `json:"moves"`
	Message string `json:"message"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// Relocation summarises how much of one item a priority compaction moved.
type Relocation struct {
	ItemID       int `json:"item_id"`
	Priority     int `json:"priority"`
	QtyRelocated int `json:"qty_relocated"`
}

// CompactionSummary is returned by RecompactByPriority.
type CompactionSummary struct {
	Relocations []Relocation `json:"relocations"`
	Message     string       `json:"message"`
}

// Assignment is the result of placing one unit automatically.
type Assignment struct {
	LocationID int `json:"location_id"`
}
