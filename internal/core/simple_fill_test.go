package core_test

import (
	"testing"

	"warehouse-slotting/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSimpleFill_LargestFirst(t *testing.T) {
	locations := []core.Location{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	stock := []core.StockRow{
		{LocationID: 1, ItemID: 100, Qty: 2, Movable: true, ItemDims: dims("1", "1", "1")},
		{LocationID: 2, ItemID: 200, Qty: 1, Movable: true, ItemDims: dims("2", "2", "2")},
		{LocationID: 3, ItemID: 300, Qty: 1, Movable: false, ItemDims: dims("3", "3", "3")},
	}

	moves := core.PlanSimpleFill(locations, stock)
	assert.Equal(t, []core.Move{
		{ItemID: 200, From: 2, To: 4, Qty: 1},
		{ItemID: 100, From: 1, To: 5, Qty: 1},
	}, moves)
}

func TestPlanSimpleFill_NothingFree(t *testing.T) {
	locations := []core.Location{{ID: 1}}
	stock := []core.StockRow{{LocationID: 1, ItemID: 100, Qty: 3, Movable: true, ItemDims: dims("1", "1", "1")}}

	moves := core.PlanSimpleFill(locations, stock)
	require.Len(t, moves, 0, "no empty location, nothing moves")
}

func TestOptimizeSimple(t *testing.T) {
	f := newFixture(t, "3", "1", "2", 3, 1, nil)
	small := f.item("small", dims("0.5", "0.5", "0.5"))
	large := f.item("large", dims("1", "1", "1"))
	locs := f.locations(t)
	require.Len(t, locs, 3)

	f.store.PutStock(locs[0].ID, small, 1, true)
	f.store.PutStock(locs[0].ID, large, 2, true)
	before := f.totals(t)

	res, err := f.svc.OptimizeSimple(f.ctx, f.whID)
	require.NoError(t, err)
	require.Len(t, res.Moves, 2)
	assert.Equal(t, "processed 2 item moves", res.Message)
	for _, m := range res.Moves {
		assert.Equal(t, large, m.ItemID, "the larger item moves first")
	}

	assert.Equal(t, before, f.totals(t))
	assert.Equal(t, 1, f.store.StockAt(locs[1].ID, large))
	assert.Equal(t, 1, f.store.StockAt(locs[2].ID, large))
	assert.Equal(t, 0, f.store.StockAt(locs[0].ID, large))
}

func TestOptimizeSimple_Messages(t *testing.T) {
	f := newFixture(t, "3", "1", "2", 0, 0, nil)
	res, err := f.svc.OptimizeSimple(f.ctx, f.whID)
	require.NoError(t, err)
	assert.Empty(t, res.Moves)
	assert.Contains(t, res.Message, "no active locations")

	f = newFixture(t, "3", "1", "2", 3, 1, nil)
	res, err = f.svc.OptimizeSimple(f.ctx, f.whID)
	require.NoError(t, err)
	assert.Equal(t, "no movable units to relocate", res.Message)

	_, err = f.svc.OptimizeSimple(f.ctx, -1)
	assert.True(t, core.IsKind(err, core.KindInvalidInput), "got %v", err)
}
