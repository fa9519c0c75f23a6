// Package memory is an in-process core.Store used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"warehouse-slotting/internal/core"
)

type stockKey struct {
	locationID int
	itemID     int
}

type aggregateKey struct {
	warehouseID int
	itemID      int
}

type stockEntry struct {
	qty       int
	movable   bool
	updatedAt time.Time
}

type state struct {
	warehouses map[int]core.Warehouse
	items      map[int]core.Item
	layouts    map[int]core.Layout
	locations  map[int]core.Location
	stock      map[stockKey]stockEntry
	aggregates map[aggregateKey]core.WarehouseItem
	nextID     int
}

func newState() *state {
	return &state{
		warehouses: make(map[int]core.Warehouse),
		items:      make(map[int]core.Item),
		layouts:    make(map[int]core.Layout),
		locations:  make(map[int]core.Location),
		stock:      make(map[stockKey]stockEntry),
		aggregates: make(map[aggregateKey]core.WarehouseItem),
		nextID:     1,
	}
}

func (s *state) clone() *state {
	c := &state{
		warehouses: make(map[int]core.Warehouse, len(s.warehouses)),
		items:      make(map[int]core.Item, len(s.items)),
		layouts:    make(map[int]core.Layout, len(s.layouts)),
		locations:  make(map[int]core.Location, len(s.locations)),
		stock:      make(map[stockKey]stockEntry, len(s.stock)),
		aggregates: make(map[aggregateKey]core.WarehouseItem, len(s.aggregates)),
		nextID:     s.nextID,
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.layouts {
		c.layouts[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.aggregates {
		c.aggregates[k] = v
	}
	return c
}

// Store keeps every table in maps guarded by one mutex. A unit of work
// snapshots the whole state and restores it when fn fails; it is not
// isolated from writers outside the unit of work.
type Store struct {
	mu      sync.Mutex
	data    *state
	txDepth int

	// FailOn, when set, is called with the method name before every write.
	// A non-nil result is returned instead of performing the write.
	FailOn func(op string) error
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newState()}
}

// AddWarehouse stores w under a fresh id and returns it.
func (s *Store) AddWarehouse(w core.Warehouse) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.data.nextID
	s.data.nextID++
	s.data.warehouses[w.ID] = w
	return w.ID
}

// AddItem stores it under a fresh id and returns it.
func (s *Store) AddItem(it core.Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.data.nextID
	s.data.nextID++
	s.data.items[it.ID] = it
	return it.ID
}

// PutStock sets a stock row verbatim and bumps the warehouse aggregate by qty.
func (s *Store) PutStock(locationID, itemID, qty int, movable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[stockKey{locationID, itemID}] = stockEntry{qty: qty, movable: movable, updatedAt: time.Now()}
	if loc, ok := s.data.locations[locationID]; ok {
		key := aggregateKey{loc.WarehouseID, itemID}
		agg := s.data.aggregates[key]
		agg.WarehouseID, agg.ItemID = loc.WarehouseID, itemID
		agg.Qty += qty
		s.data.aggregates[key] = agg
	}
}

// StockAt returns the quantity of itemID at locationID.
func (s *Store) StockAt(locationID, itemID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.stock[stockKey{locationID, itemID}].qty
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	s.mu.Lock()
	nested := s.txDepth > 0
	s.txDepth++
	var snapshot *state
	if !nested {
		snapshot = s.data.clone()
	}
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txDepth--
	if err != nil && !nested {
		s.data = snapshot
	}
	return err
}

func (s *Store) GetWarehouse(ctx context.Context, warehouseID int) (*core.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.warehouses[warehouseID]
	if !ok {
		return nil, core.NewError(core.KindWarehouseNotFound, "warehouse %d not found", warehouseID)
	}
	return &w, nil
}

func (s *Store) GetLayout(ctx context.Context, warehouseID int) (*core.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.layouts[warehouseID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Store) GetItem(ctx context.Context, itemID int) (*core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.data.items[itemID]
	if !ok {
		return nil, core.NewError(core.KindItemNotFound, "item %d not found", itemID)
	}
	return &it, nil
}

func (s *Store) GetItems(ctx context.Context, ids []int) (map[int]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]core.Item, len(ids))
	for _, id := range ids {
		if it, ok := s.data.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (s *Store) ListActiveLocations(ctx context.Context, warehouseID int) ([]core.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Location
	for _, l := range s.data.locations {
		if l.WarehouseID == warehouseID && l.Active {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListStock(ctx context.Context, warehouseID int) ([]core.StockRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.StockRow
	for k, e := range s.data.stock {
		loc, ok := s.data.locations[k.locationID]
		if !ok || loc.WarehouseID != warehouseID {
			continue
		}
		it := s.data.items[k.itemID]
		out = append(out, core.StockRow{
			LocationID: k.locationID,
			ItemID:     k.itemID,
			ItemName:   it.Name,
			Qty:        e.qty,
			Movable:    e.movable,
			Priority:   s.data.aggregates[aggregateKey{warehouseID, k.itemID}].Priority,
			ItemDims:   it.Dims,
			UpdatedAt:  e.updatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := s.data.locations[out[i].LocationID], s.data.locations[out[j].LocationID]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func (s *Store) ListWarehouseItems(ctx context.Context, warehouseID int) ([]core.WarehouseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.WarehouseItem
	for k, v := range s.data.aggregates {
		if k.warehouseID == warehouseID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (s *Store) fail(op string) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op)
}

func (s *Store) AddStock(ctx context.Context, locationID, itemID, qty int, forceMovable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddStock"); err != nil {
		return err
	}
	if _, ok := s.data.locations[locationID]; !ok {
		return core.NewError(core.KindInvalidInput, "location %d does not exist", locationID)
	}
	key := stockKey{locationID, itemID}
	e, ok := s.data.stock[key]
	if !ok {
		e = stockEntry{movable: true}
	}
	e.qty += qty
	if forceMovable {
		e.movable = true
	}
	e.updatedAt = time.Now()
	s.data.stock[key] = e
	return nil
}

func (s *Store) RemoveStock(ctx context.Context, locationID, itemID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RemoveStock"); err != nil {
		return err
	}
	key := stockKey{locationID, itemID}
	e, ok := s.data.stock[key]
	if !ok {
		return nil
	}
	e.qty -= qty
	if e.qty <= 0 {
		delete(s.data.stock, key)
		return nil
	}
	e.updatedAt = time.Now()
	s.data.stock[key] = e
	return nil
}

func (s *Store) AddWarehouseItemQty(ctx context.Context, warehouseID, itemID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddWarehouseItemQty"); err != nil {
		return err
	}
	key := aggregateKey{warehouseID, itemID}
	agg := s.data.aggregates[key]
	agg.WarehouseID, agg.ItemID = warehouseID, itemID
	agg.Qty += delta
	s.data.aggregates[key] = agg
	return nil
}

func (s *Store) SetWarehouseItemPriority(ctx context.Context, warehouseID, itemID, priority int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetWarehouseItemPriority"); err != nil {
		return err
	}
	if _, ok := s.data.items[itemID]; !ok {
		return core.NewError(core.KindItemNotFound, "item %d not found", itemID)
	}
	key := aggregateKey{warehouseID, itemID}
	agg := s.data.aggregates[key]
	agg.WarehouseID, agg.ItemID = warehouseID, itemID
	agg.Priority = priority
	s.data.aggregates[key] = agg
	return nil
}

func (s *Store) SaveLayout(ctx context.Context, layout core.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveLayout"); err != nil {
		return err
	}
	s.data.layouts[layout.WarehouseID] = layout
	return nil
}

func (s *Store) ReplaceLocations(ctx context.Context, warehouseID int, cells []core.GridCell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReplaceLocations"); err != nil {
		return err
	}
	for id, l := range s.data.locations {
		if l.WarehouseID != warehouseID {
			continue
		}
		delete(s.data.locations, id)
		for k := range s.data.stock {
			if k.locationID == id {
				delete(s.data.stock, k)
			}
		}
	}
	for _, c := range cells {
		id := s.data.nextID
		s.data.nextID++
		s.data.locations[id] = core.Location{
			ID:          id,
			WarehouseID: warehouseID,
			Name:        c.Name(),
			X:           c.X,
			Y:           c.Y,
			Active:      true,
		}
	}
	return nil
}
