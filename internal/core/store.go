package core

import "context"

// Store is the narrow data-access contract the slotting engine depends on.
// Reads return rows; writes are single-row upserts; InTx groups writes into
// one unit of work.
type Store interface {
	// GetWarehouse returns a KindWarehouseNotFound error when absent.
	GetWarehouse(ctx context.Context, warehouseID int) (*Warehouse, error)
	// GetLayout returns (nil, nil) when the warehouse has no layout.
	GetLayout(ctx context.Context, warehouseID int) (*Layout, error)
	// GetItem returns a KindItemNotFound error when absent.
	GetItem(ctx context.Context, itemID int) (*Item, error)
	// GetItems returns the items that exist among ids, keyed by id.
	GetItems(ctx context.Context, ids []int) (map[int]Item, error)

	// ListActiveLocations returns active locations ordered by (y, x, id).
	ListActiveLocations(ctx context.Context, warehouseID int) ([]Location, error)
	// ListStock returns every stock row at the warehouse's locations, joined
	// with item dimensions and aggregate priority (0 when unset).
	ListStock(ctx context.Context, warehouseID int) ([]StockRow, error)
	// ListWarehouseItems returns the per-warehouse aggregates.
	ListWarehouseItems(ctx context.Context, warehouseID int) ([]WarehouseItem, error)

	// AddStock inserts or increments a location stock row. New rows are
	// movable; forceMovable also marks an existing row movable.
	AddStock(ctx context.Context, locationID, itemID, qty int, forceMovable bool) error
	// RemoveStock decrements a location stock row and deletes it once its
	// quantity drops to zero or below.
	RemoveStock(ctx context.Context, locationID, itemID, qty int) error
	// AddWarehouseItemQty inserts or increments the warehouse aggregate.
	AddWarehouseItemQty(ctx context.Context, warehouseID, itemID, delta int) error
	// SetWarehouseItemPriority inserts (qty 0) or updates the aggregate priority.
	SetWarehouseItemPriority(ctx context.Context, warehouseID, itemID, priority int) error

	// SaveLayout inserts or replaces the warehouse's layout.
	SaveLayout(ctx context.Context, layout Layout) error
	// ReplaceLocations deletes every location of the warehouse (and the stock
	// bound to them) and creates one active location per cell.
	ReplaceLocations(ctx context.Context, warehouseID int, cells []GridCell) error

	// InTx runs fn inside one unit of work. If fn returns an error every write
	// made through the Store passed to fn is rolled back. Calling InTx on a
	// Store already inside a unit of work joins it.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
