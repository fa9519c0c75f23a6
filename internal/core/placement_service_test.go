package core_test

import (
	"testing"

	"warehouse-slotting/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignOneUnit_StacksThenSpills(t *testing.T) {
	// Two cells of 1x1x2: a unit cube stacks two high.
	f := newFixture(t, "2", "1", "2", 2, 1, nil)
	box := f.item("box", dims("1", "1", "1"))
	locs := f.locations(t)
	require.Len(t, locs, 2)

	want := []int{locs[0].ID, locs[0].ID, locs[1].ID, locs[1].ID}
	for i, loc := range want {
		got, err := f.svc.AssignOneUnit(f.ctx, f.whID, box)
		require.NoError(t, err, "unit %d", i)
		assert.Equal(t, loc, got.LocationID, "unit %d", i)
	}

	_, err := f.svc.AssignOneUnit(f.ctx, f.whID, box)
	assert.True(t, core.IsKind(err, core.KindNoFreeLocation), "got %v", err)

	aggs, err := f.store.ListWarehouseItems(f.ctx, f.whID)
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, 4, aggs[0].Qty)
	assert.Equal(t, 2, f.store.StockAt(locs[0].ID, box))
}

func TestAssignOneUnit_Errors(t *testing.T) {
	f := newFixture(t, "2", "1", "2", 2, 1, nil)
	big := f.item("crate", dims("2", "2", "2"))

	_, err := f.svc.AssignOneUnit(f.ctx, f.whID, big)
	assert.True(t, core.IsKind(err, core.KindItemTooBigForCell), "got %v", err)

	_, err = f.svc.AssignOneUnit(f.ctx, f.whID, 9999)
	assert.True(t, core.IsKind(err, core.KindItemNotFound), "got %v", err)

	_, err = f.svc.AssignOneUnit(f.ctx, f.whID, 0)
	assert.True(t, core.IsKind(err, core.KindInvalidInput), "got %v", err)

	_, err = f.svc.AssignOneUnit(f.ctx, 9999, big)
	assert.True(t, core.IsKind(err, core.KindWarehouseNotFound), "got %v", err)
}

func TestAssignOneUnit_NoLayoutIsUnbounded(t *testing.T) {
	f := newFixture(t, "0", "0", "0", 0, 0, nil)
	box := f.item("box", dims("1", "1", "1"))

	_, err := f.svc.AssignOneUnit(f.ctx, f.whID, box)
	assert.True(t, core.IsKind(err, core.KindNoFreeLocation), "no locations without a layout, got %v", err)
}

func TestChooseUnitLocation(t *testing.T) {
	locations := []core.Location{
		{ID: 10, Active: true},
		{ID: 11, Active: true},
		{ID: 12, Active: false},
		{ID: 13, Active: true},
	}
	fit := &core.Fit{MaxUnits: 3}

	t.Run("existing stack with room", func(t *testing.T) {
		stock := []core.StockRow{
			{LocationID: 13, ItemID: 1, Qty: 1},
			{LocationID: 10, ItemID: 1, Qty: 3},
		}
		id, ok := core.ChooseUnitLocation(locations, stock, 1, fit)
		require.True(t, ok)
		assert.Equal(t, 13, id)
	})

	t.Run("first empty location", func(t *testing.T) {
		stock := []core.StockRow{
			{LocationID: 10, ItemID: 2, Qty: 1},
		}
		id, ok := core.ChooseUnitLocation(locations, stock, 1, fit)
		require.True(t, ok)
		assert.Equal(t, 11, id)
	})

	t.Run("stacks on inactive locations are ignored", func(t *testing.T) {
		stock := []core.StockRow{
			{LocationID: 12, ItemID: 1, Qty: 1},
			{LocationID: 10, ItemID: 2, Qty: 1},
			{LocationID: 11, ItemID: 2, Qty: 1},
			{LocationID: 13, ItemID: 2, Qty: 1},
		}
		_, ok := core.ChooseUnitLocation(locations, stock, 1, fit)
		assert.False(t, ok)
	})
}
