package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"warehouse-slotting/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PgStore implements core.Store on PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
	q    querier
	tx   pgx.Tx
}

var _ core.Store = (*PgStore)(nil)

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, q: pool}
}

func (s *PgStore) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PgStore{pool: s.pool, q: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PgStore) GetWarehouse(ctx context.Context, warehouseID int) (*core.Warehouse, error) {
	var w core.Warehouse
	err := s.q.QueryRow(ctx, `
		SELECT id, name, COALESCE(width, 0), COALESCE(length, 0), COALESCE(height, 0)
		FROM warehouses
		WHERE id = $1
	`, warehouseID).Scan(&w.ID, &w.Name, &w.Width, &w.Length, &w.Height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.KindWarehouseNotFound, "warehouse %d not found", warehouseID)
		}
		return nil, fmt.Errorf("failed to fetch warehouse: %w", err)
	}
	return &w, nil
}

func (s *PgStore) GetLayout(ctx context.Context, warehouseID int) (*core.Layout, error) {
	l := core.Layout{WarehouseID: warehouseID}
	var cells []byte
	err := s.q.QueryRow(ctx, `
		SELECT grid_width, grid_length, cells
		FROM warehouse_layouts
		WHERE warehouse_id = $1
	`, warehouseID).Scan(&l.GridWidth, &l.GridLength, &cells)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch layout: %w", err)
	}
	l.Cells = core.ParseCellMap(cells)
	return &l, nil
}

func (s *PgStore) GetItem(ctx context.Context, itemID int) (*core.Item, error) {
	var it core.Item
	err := s.q.QueryRow(ctx, `
		SELECT id, name, COALESCE(width, 0), COALESCE(length, 0), COALESCE(height, 0)
		FROM items
		WHERE id = $1
	`, itemID).Scan(&it.ID, &it.Name, &it.Dims.Width, &it.Dims.Length, &it.Dims.Height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.KindItemNotFound, "item %d not found", itemID)
		}
		return nil, fmt.Errorf("failed to fetch item: %w", err)
	}
	return &it, nil
}

func (s *PgStore) GetItems(ctx context.Context, ids []int) (map[int]core.Item, error) {
	out := make(map[int]core.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT id, name, COALESCE(width, 0), COALESCE(length, 0), COALESCE(height, 0)
		FROM items
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it core.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Dims.Width, &it.Dims.Length, &it.Dims.Height); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

func (s *PgStore) ListActiveLocations(ctx context.Context, warehouseID int) ([]core.Location, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, warehouse_id, name, pos_x, pos_y, active
		FROM locations
		WHERE warehouse_id = $1 AND active = true
		ORDER BY pos_y, pos_x, id
	`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []core.Location
	for rows.Next() {
		var l core.Location
		if err := rows.Scan(&l.ID, &l.WarehouseID, &l.Name, &l.X, &l.Y, &l.Active); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *PgStore) ListStock(ctx context.Context, warehouseID int) ([]core.StockRow, error) {
	rows, err := s.q.Query(ctx, `
		SELECT ls.location_id, ls.item_id, i.name, ls.qty, ls.movable,
		       COALESCE(wi.priority, 0),
		       COALESCE(i.width, 0), COALESCE(i.length, 0), COALESCE(i.height, 0),
		       ls.updated_at
		FROM location_stock ls
		JOIN locations l ON l.id = ls.location_id
		JOIN items i ON i.id = ls.item_id
		LEFT JOIN warehouse_items wi ON wi.warehouse_id = l.warehouse_id AND wi.item_id = ls.item_id
		WHERE l.warehouse_id = $1
		ORDER BY l.pos_y, l.pos_x, l.id, ls.item_id
	`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	var stock []core.StockRow
	for rows.Next() {
		var r core.StockRow
		if err := rows.Scan(&r.LocationID, &r.ItemID, &r.ItemName, &r.Qty, &r.Movable, &r.Priority,
			&r.ItemDims.Width, &r.ItemDims.Length, &r.ItemDims.Height, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stock = append(stock, r)
	}
	return stock, rows.Err()
}

func (s *PgStore) ListWarehouseItems(ctx context.Context, warehouseID int) ([]core.WarehouseItem, error) {
	rows, err := s.q.Query(ctx, `
		SELECT warehouse_id, item_id, qty, priority
		FROM warehouse_items
		WHERE warehouse_id = $1
		ORDER BY item_id
	`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouse items: %w", err)
	}
	defer rows.Close()

	var items []core.WarehouseItem
	for rows.Next() {
		var wi core.WarehouseItem
		if err := rows.Scan(&wi.WarehouseID, &wi.ItemID, &wi.Qty, &wi.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse item: %w", err)
		}
		items = append(items, wi)
	}
	return items, rows.Err()
}

func (s *PgStore) AddStock(ctx context.Context, locationID, itemID, qty int, forceMovable bool) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO location_stock (location_id, item_id, qty, movable)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (location_id, item_id) DO UPDATE
		SET qty = location_stock.qty + EXCLUDED.qty,
		    movable = location_stock.movable OR $4,
		    updated_at = NOW()
	`, locationID, itemID, qty, forceMovable)
	if err != nil {
		return fmt.Errorf("failed to add stock: %w", err)
	}
	return nil
}

func (s *PgStore) RemoveStock(ctx context.Context, locationID, itemID, qty int) error {
	_, err := s.q.Exec(ctx, `
		UPDATE location_stock
		SET qty = qty - $3, updated_at = NOW()
		WHERE location_id = $1 AND item_id = $2
	`, locationID, itemID, qty)
	if err != nil {
		return fmt.Errorf("failed to remove stock: %w", err)
	}
	_, err = s.q.Exec(ctx, `
		DELETE FROM location_stock
		WHERE location_id = $1 AND item_id = $2 AND qty <= 0
	`, locationID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete empty stock row: %w", err)
	}
	return nil
}

func (s *PgStore) AddWarehouseItemQty(ctx context.Context, warehouseID, itemID, delta int) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO warehouse_items (warehouse_id, item_id, qty, priority)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (warehouse_id, item_id) DO UPDATE
		SET qty = warehouse_items.qty + EXCLUDED.qty, updated_at = NOW()
	`, warehouseID, itemID, delta)
	if err != nil {
		return fmt.Errorf("failed to update warehouse item: %w", err)
	}
	return nil
}

func (s *PgStore) SetWarehouseItemPriority(ctx context.Context, warehouseID, itemID, priority int) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO warehouse_items (warehouse_id, item_id, qty, priority)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (warehouse_id, item_id) DO UPDATE
		SET priority = EXCLUDED.priority, updated_at = NOW()
	`, warehouseID, itemID, priority)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return core.NewError(core.KindItemNotFound, "item %d not found", itemID)
		}
		return fmt.Errorf("failed to set priority: %w", err)
	}
	return nil
}

func (s *PgStore) SaveLayout(ctx context.Context, layout core.Layout) error {
	cells, err := json.Marshal(layout.Cells)
	if err != nil {
		return fmt.Errorf("failed to encode cells: %w", err)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO warehouse_layouts (warehouse_id, grid_width, grid_length, cells)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (warehouse_id) DO UPDATE
		SET grid_width = EXCLUDED.grid_width,
		    grid_length = EXCLUDED.grid_length,
		    cells = EXCLUDED.cells,
		    updated_at = NOW()
	`, layout.WarehouseID, layout.GridWidth, layout.GridLength, cells)
	if err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

func (s *PgStore) ReplaceLocations(ctx context.Context, warehouseID int, cells []core.GridCell) error {
	if _, err := s.q.Exec(ctx, "DELETE FROM locations WHERE warehouse_id = $1", warehouseID); err != nil {
		return fmt.Errorf("failed to delete locations: %w", err)
	}
	if len(cells) == 0 {
		return nil
	}

	_, err := s.q.CopyFrom(ctx,
		pgx.Identifier{"locations"},
		[]string{"warehouse_id", "name", "pos_x", "pos_y", "active"},
		pgx.CopyFromSlice(len(cells), func(i int) ([]any, error) {
			c := cells[i]
			return []any{warehouseID, c.Name(), c.X, c.Y, true}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert locations: %w", err)
	}
	return nil
}
