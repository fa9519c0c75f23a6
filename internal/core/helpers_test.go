package core_test

import (
	"context"
	"io"
	"testing"

	"warehouse-slotting/internal/core"
	"warehouse-slotting/internal/db/memory"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dims(w, l, h string) core.Dims {
	return core.Dims{Width: d(w), Length: d(l), Height: d(h)}
}

// fixture is a warehouse in an in-memory store with a service on top.
type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   core.SlottingService
	whID  int
}

// newFixture creates a warehouse of the given extents and, when gridW and
// gridL are positive, stores a layout for it.
func newFixture(t *testing.T, w, l, h string, gridW, gridL int, cells map[int]core.CellState) *fixture {
	return newFixtureWithPolicy(t, w, l, h, gridW, gridL, cells, core.DefaultPlannerPolicy())
}

func newFixtureWithPolicy(t *testing.T, w, l, h string, gridW, gridL int, cells map[int]core.CellState, policy core.PlannerPolicy) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	whID := store.AddWarehouse(core.Warehouse{Name: "Main", Width: d(w), Length: d(l), Height: d(h)})
	svc := core.NewSlottingService(store, nil, policy, log.New(io.Discard))

	if gridW > 0 && gridL > 0 {
		_, err := svc.SaveLayout(ctx, core.Layout{
			WarehouseID: whID,
			GridWidth:   gridW,
			GridLength:  gridL,
			Cells:       core.NewCellMap(cells),
		})
		require.NoError(t, err)
	}
	return &fixture{ctx: ctx, store: store, svc: svc, whID: whID}
}

func (f *fixture) item(name string, dm core.Dims) int {
	return f.store.AddItem(core.Item{Name: name, Dims: dm})
}

// locations returns the active locations in front-to-back order.
func (f *fixture) locations(t *testing.T) []core.Location {
	t.Helper()
	locs, err := f.store.ListActiveLocations(f.ctx, f.whID)
	require.NoError(t, err)
	return locs
}

func (f *fixture) stock(t *testing.T) []core.StockRow {
	t.Helper()
	rows, err := f.store.ListStock(f.ctx, f.whID)
	require.NoError(t, err)
	return rows
}

// totals sums stock per item.
func (f *fixture) totals(t *testing.T) map[int]int {
	t.Helper()
	out := make(map[int]int)
	for _, row := range f.stock(t) {
		out[row.ItemID] += row.Qty
	}
	return out
}

// itemsAt lists the distinct items held by a location.
func (f *fixture) itemsAt(t *testing.T, locationID int) map[int]int {
	t.Helper()
	out := make(map[int]int)
	for _, row := range f.stock(t) {
		if row.LocationID == locationID {
			out[row.ItemID] += row.Qty
		}
	}
	return out
}
