package core_test

import (
	"errors"
	"testing"

	"warehouse-slotting/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLayout_CreatesOneLocationPerOpenCell(t *testing.T) {
	f := newFixture(t, "3", "2", "2", 0, 0, nil)

	created, err := f.svc.SaveLayout(f.ctx, core.Layout{
		WarehouseID: f.whID,
		GridWidth:   3,
		GridLength:  2,
		Cells: core.NewCellMap(map[int]core.CellState{
			1: core.CellBlocked,
			3: core.CellOccupied,
			4: core.CellRestricted,
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	locs := f.locations(t)
	require.Len(t, locs, 4)
	names := make([]string, 0, len(locs))
	for _, l := range locs {
		names = append(names, l.Name)
		assert.True(t, l.Active)
	}
	assert.Equal(t, []string{"C-0-0", "C-2-0", "C-1-1", "C-2-1"}, names)

	layout, err := f.svc.GetLayout(f.ctx, f.whID)
	require.NoError(t, err)
	require.NotNil(t, layout)
	assert.Equal(t, 3, layout.GridWidth)
	assert.Equal(t, core.CellOccupied, layout.Cells.State(3))
}

func TestSaveLayout_Errors(t *testing.T) {
	f := newFixture(t, "3", "2", "2", 0, 0, nil)

	_, err := f.svc.SaveLayout(f.ctx, core.Layout{WarehouseID: f.whID, GridWidth: 0, GridLength: 2})
	assert.True(t, core.IsKind(err, core.KindInvalidInput), "got %v", err)

	before := f.locations(t)
	_, err = f.svc.SaveLayout(f.ctx, core.Layout{WarehouseID: f.whID, GridWidth: 3037000500, GridLength: 3037000500})
	assert.True(t, core.IsKind(err, core.KindInvalidInput), "got %v", err)
	assert.Equal(t, before, f.locations(t))

	_, err = f.svc.SaveLayout(f.ctx, core.Layout{WarehouseID: 9999, GridWidth: 1, GridLength: 1})
	assert.True(t, core.IsKind(err, core.KindWarehouseNotFound), "got %v", err)
}

func TestSaveLayout_FailureKeepsPreviousLayout(t *testing.T) {
	f := newFixture(t, "3", "2", "2", 3, 2, nil)
	before := f.locations(t)

	f.store.FailOn = func(op string) error {
		if op == "ReplaceLocations" {
			return errors.New("connection reset")
		}
		return nil
	}
	_, err := f.svc.SaveLayout(f.ctx, core.Layout{WarehouseID: f.whID, GridWidth: 1, GridLength: 1})
	require.Error(t, err)

	layout, err := f.svc.GetLayout(f.ctx, f.whID)
	require.NoError(t, err)
	assert.Equal(t, 3, layout.GridWidth)
	assert.Equal(t, before, f.locations(t))
}

func TestRegenerateLocations(t *testing.T) {
	f := newFixture(t, "2", "1", "2", 2, 1, nil)
	box := f.item("box", dims("1", "1", "1"))
	first := f.locations(t)
	f.store.PutStock(first[0].ID, box, 1, true)

	n, err := f.svc.RegenerateLocations(f.ctx, f.whID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	second := f.locations(t)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[0].ID, second[0].ID, "locations are recreated")
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Empty(t, f.stock(t), "stock at removed locations is discarded")

	n, err = f.svc.RegenerateLocations(f.ctx, f.whID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.locations(t), 2)
}

func TestRegenerateLocations_NeedsLayout(t *testing.T) {
	f := newFixture(t, "2", "1", "2", 0, 0, nil)
	_, err := f.svc.RegenerateLocations(f.ctx, f.whID)
	assert.True(t, core.IsKind(err, core.KindLayoutRequired), "got %v", err)

	layout, err := f.svc.GetLayout(f.ctx, f.whID)
	require.NoError(t, err)
	assert.Nil(t, layout)

	_, err = f.svc.GetLayout(f.ctx, 9999)
	assert.True(t, core.IsKind(err, core.KindWarehouseNotFound), "got %v", err)
}
