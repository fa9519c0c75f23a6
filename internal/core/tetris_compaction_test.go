package core_test

import (
	"errors"
	"testing"

	"warehouse-slotting/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactAll_DryRunMatchesApply(t *testing.T) {
	f := newFixture(t, "4", "1", "2", 4, 1, nil)
	box := f.item("box", dims("1", "1", "1"))
	locs := f.locations(t)
	f.store.PutStock(locs[1].ID, box, 1, true)
	f.store.PutStock(locs[3].ID, box, 1, true)
	before := f.stock(t)

	dry, err := f.svc.CompactAll(f.ctx, f.whID, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, "dry run: 2 moves planned", dry.Message)
	assert.Equal(t, before, f.stock(t), "a dry run writes nothing")

	applied, err := f.svc.CompactAll(f.ctx, f.whID, false)
	require.NoError(t, err)
	assert.False(t, applied.DryRun)
	assert.Equal(t, dry.Moves, applied.Moves)
	assert.Equal(t, []core.Move{
		{ItemID: box, From: locs[3].ID, To: locs[0].ID, Qty: 1},
		{ItemID: box, From: locs[1].ID, To: locs[0].ID, Qty: 1},
	}, applied.Moves)

	assert.Equal(t, map[int]int{box: 2}, f.itemsAt(t, locs[0].ID))
	assert.Equal(t, map[int]int{box: 2}, f.totals(t))

	again, err := f.svc.CompactAll(f.ctx, f.whID, false)
	require.NoError(t, err)
	assert.Empty(t, again.Moves, "a compacted warehouse stays put")
}

func TestCompactAll_LockedCellsAndPriority(t *testing.T) {
	f := newFixture(t, "4", "1", "2", 4, 1, nil)
	fixed := f.item("fixed", dims("1", "1", "1"))
	low := f.item("low", dims("1", "1", "1"))
	high := f.item("high", dims("1", "1", "1"))
	locs := f.locations(t)

	f.store.PutStock(locs[0].ID, fixed, 1, false)
	f.store.PutStock(locs[2].ID, high, 1, true)
	f.store.PutStock(locs[3].ID, high, 1, true)
	f.store.PutStock(locs[1].ID, low, 1, true)
	require.NoError(t, f.store.SetWarehouseItemPriority(f.ctx, f.whID, high, 5))

	res, err := f.svc.CompactAll(f.ctx, f.whID, false)
	require.NoError(t, err)
	assert.Len(t, res.Moves, 3)

	assert.Equal(t, map[int]int{fixed: 1}, f.itemsAt(t, locs[0].ID), "non-movable stock locks its cell")
	assert.Equal(t, map[int]int{high: 2}, f.itemsAt(t, locs[1].ID))
	assert.Equal(t, map[int]int{low: 1}, f.itemsAt(t, locs[2].ID))
	assert.Empty(t, f.itemsAt(t, locs[3].ID))
}

func TestCompactAll_LayoutRequired(t *testing.T) {
	f := newFixture(t, "4", "1", "2", 0, 0, nil)
	_, err := f.svc.CompactAll(f.ctx, f.whID, true)
	assert.True(t, core.IsKind(err, core.KindLayoutRequired), "got %v", err)

	f = newFixture(t, "0", "1", "2", 4, 1, nil)
	_, err = f.svc.CompactAll(f.ctx, f.whID, true)
	assert.True(t, core.IsKind(err, core.KindLayoutRequired), "zero width has no standard cell, got %v", err)
}

func TestPlanTetrisCompaction_KeepsUnitsInPlace(t *testing.T) {
	locations := []core.Location{{ID: 1, X: 0}, {ID: 2, X: 1}, {ID: 3, X: 2}}
	stock := []core.StockRow{
		{LocationID: 1, ItemID: 7, Qty: 1, Movable: false},
		{LocationID: 2, ItemID: 8, Qty: 1, Movable: true},
		{LocationID: 3, ItemID: 8, Qty: 1, Movable: true},
	}
	aggs := []core.WarehouseItem{{ItemID: 7, Qty: 1}, {ItemID: 8, Qty: 2}}
	items := map[int]core.Item{
		7: {ID: 7, Dims: dims("1", "1", "1")},
		8: {ID: 8, Dims: dims("1", "1", "1")},
	}
	cell := &core.CellDims{Width: d("1"), Length: d("1"), Height: d("2")}

	plan, err := core.PlanTetrisCompaction(locations, stock, aggs, items, cell)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, plan.Locked)
	assert.Equal(t, []core.StockDelta{{LocationID: 2, ItemID: 8, Qty: 2}}, plan.Targets)
	assert.Equal(t, []core.Move{{ItemID: 8, From: 3, To: 2, Qty: 1}}, plan.Moves)
}

func TestPlanTetrisCompaction_Errors(t *testing.T) {
	locations := []core.Location{{ID: 1, X: 0}, {ID: 2, X: 1}}
	cell := &core.CellDims{Width: d("1"), Length: d("1"), Height: d("2")}
	cube := map[int]core.Item{8: {ID: 8, Dims: dims("1", "1", "1")}}

	t.Run("no cell", func(t *testing.T) {
		_, err := core.PlanTetrisCompaction(locations, nil, nil, nil, nil)
		assert.True(t, core.IsKind(err, core.KindLayoutRequired), "got %v", err)
	})

	t.Run("aggregate larger than stock", func(t *testing.T) {
		stock := []core.StockRow{{LocationID: 2, ItemID: 8, Qty: 1, Movable: true}}
		aggs := []core.WarehouseItem{{ItemID: 8, Qty: 3}}
		_, err := core.PlanTetrisCompaction(locations, stock, aggs, cube, cell)
		assert.True(t, core.IsKind(err, core.KindInconsistentStock), "got %v", err)
	})

	t.Run("stock larger than aggregate", func(t *testing.T) {
		stock := []core.StockRow{
			{LocationID: 1, ItemID: 8, Qty: 1, Movable: true},
			{LocationID: 2, ItemID: 8, Qty: 1, Movable: true},
		}
		aggs := []core.WarehouseItem{{ItemID: 8, Qty: 1}}
		_, err := core.PlanTetrisCompaction(locations, stock, aggs, cube, cell)
		assert.True(t, core.IsKind(err, core.KindInconsistentStock), "got %v", err)
	})

	t.Run("stock without aggregate", func(t *testing.T) {
		stock := []core.StockRow{
			{LocationID: 1, ItemID: 8, Qty: 1, Movable: true},
			{LocationID: 2, ItemID: 7, Qty: 1, Movable: true},
		}
		aggs := []core.WarehouseItem{{ItemID: 8, Qty: 1}}
		_, err := core.PlanTetrisCompaction(locations, stock, aggs, cube, cell)
		require.True(t, core.IsKind(err, core.KindInconsistentStock), "got %v", err)
		assert.Contains(t, err.Error(), "item 7")
	})

	t.Run("not enough free cells", func(t *testing.T) {
		stock := []core.StockRow{
			{LocationID: 1, ItemID: 8, Qty: 3, Movable: true},
			{LocationID: 2, ItemID: 8, Qty: 2, Movable: true},
		}
		aggs := []core.WarehouseItem{{ItemID: 8, Qty: 5}}
		_, err := core.PlanTetrisCompaction(locations, stock, aggs, cube, cell)
		assert.True(t, core.IsKind(err, core.KindNoSpaceToCompact), "got %v", err)
	})

	t.Run("missing dimensions", func(t *testing.T) {
		stock := []core.StockRow{{LocationID: 2, ItemID: 9, Qty: 1, Movable: true}}
		aggs := []core.WarehouseItem{{ItemID: 9, Qty: 1}}
		items := map[int]core.Item{9: {ID: 9, Dims: core.Dims{Width: d("1")}}}
		_, err := core.PlanTetrisCompaction(locations, stock, aggs, items, cell)
		assert.True(t, core.IsKind(err, core.KindItemDimsMissing), "got %v", err)
	})

	t.Run("too big", func(t *testing.T) {
		stock := []core.StockRow{{LocationID: 2, ItemID: 9, Qty: 1, Movable: true}}
		aggs := []core.WarehouseItem{{ItemID: 9, Qty: 1}}
		items := map[int]core.Item{9: {ID: 9, Dims: dims("2", "2", "2")}}
		_, err := core.PlanTetrisCompaction(locations, stock, aggs, items, cell)
		assert.True(t, core.IsKind(err, core.KindItemTooBigForCell), "got %v", err)
	})

	t.Run("fixed stock needs no dimensions", func(t *testing.T) {
		stock := []core.StockRow{{LocationID: 1, ItemID: 9, Qty: 1, Movable: false}}
		aggs := []core.WarehouseItem{{ItemID: 9, Qty: 1}}
		plan, err := core.PlanTetrisCompaction(locations, stock, aggs, map[int]core.Item{}, cell)
		require.NoError(t, err)
		assert.Empty(t, plan.Moves)
	})
}

func TestCompactAll_WriteFailureRollsBack(t *testing.T) {
	f := newFixture(t, "4", "1", "2", 4, 1, nil)
	box := f.item("box", dims("1", "1", "1"))
	locs := f.locations(t)
	f.store.PutStock(locs[1].ID, box, 1, true)
	f.store.PutStock(locs[3].ID, box, 1, true)
	before := f.stock(t)

	writes := 0
	f.store.FailOn = func(op string) error {
		writes++
		if writes == 3 {
			return errors.New("boom")
		}
		return nil
	}

	_, err := f.svc.CompactAll(f.ctx, f.whID, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply move 2 of 2")
	assert.Equal(t, 3, writes)

	f.store.FailOn = nil
	assert.Equal(t, before, f.stock(t), "the first move is rolled back with the second")
	assert.Equal(t, map[int]int{box: 2}, f.totals(t))
}

func TestCompactAll_NoSpaceLeavesStockUnchanged(t *testing.T) {
	f := newFixture(t, "2", "1", "2", 2, 1, nil)
	box := f.item("box", dims("1", "1", "1"))
	locs := f.locations(t)
	f.store.PutStock(locs[0].ID, box, 3, true)
	f.store.PutStock(locs[1].ID, box, 2, true)
	before := f.stock(t)

	_, err := f.svc.CompactAll(f.ctx, f.whID, false)
	assert.True(t, core.IsKind(err, core.KindNoSpaceToCompact), "got %v", err)
	assert.Equal(t, before, f.stock(t))
}
