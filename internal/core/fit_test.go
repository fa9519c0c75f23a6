package core_test

import (
	"testing"

	"warehouse-slotting/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestFit_UnitCubeFillsCell(t *testing.T) {
	cell := &core.CellDims{Width: d("2"), Length: d("2"), Height: d("3")}

	fit := core.BestFit(dims("1", "1", "1"), cell)
	require.NotNil(t, fit)
	assert.Equal(t, 2, fit.PerRow)
	assert.Equal(t, 2, fit.PerCol)
	assert.Equal(t, 4, fit.PerLayer)
	assert.Equal(t, 3, fit.Layers)
	assert.Equal(t, 12, fit.MaxUnits)
	assert.Equal(t, 12, fit.Capacity())
	assert.False(t, fit.Unbounded)
}

func TestBestFit_NoOrientationFits(t *testing.T) {
	cell := &core.CellDims{Width: d("1"), Length: d("1"), Height: d("2")}
	assert.Nil(t, core.BestFit(dims("2", "2", "1"), cell))
}

func TestBestFit_RotatesToFit(t *testing.T) {
	// 3 long only fits lying along the cell length.
	cell := &core.CellDims{Width: d("1"), Length: d("3"), Height: d("1")}

	fit := core.BestFit(dims("3", "1", "1"), cell)
	require.NotNil(t, fit)
	assert.True(t, fit.Length.Equal(d("3")))
	assert.True(t, fit.Width.Equal(d("1")))
	assert.Equal(t, 1, fit.MaxUnits)
}

func TestBestFit_PicksOrientationWithMostUnits(t *testing.T) {
	cell := &core.CellDims{Width: d("1.2"), Length: d("1"), Height: d("2.5")}
	item := dims("0.4", "0.5", "1")

	fit := core.BestFit(item, cell)
	require.NotNil(t, fit)

	// Brute force over the six axis permutations.
	ext := []string{"0.4", "0.5", "1"}
	best := 0
	for _, p := range [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}} {
		w, l, h := d(ext[p[0]]), d(ext[p[1]]), d(ext[p[2]])
		if w.GreaterThan(cell.Width) || l.GreaterThan(cell.Length) || h.GreaterThan(cell.Height) {
			continue
		}
		n := int(cell.Width.Div(w).Floor().IntPart() * cell.Length.Div(l).Floor().IntPart() * cell.Height.Div(h).Floor().IntPart())
		best = max(best, n)
	}
	assert.Equal(t, best, fit.MaxUnits)
	assert.Equal(t, fit.PerLayer*fit.Layers, fit.MaxUnits)
}

func TestBestFit_ExactDivisionHasNoRoundingLoss(t *testing.T) {
	cell := &core.CellDims{Width: d("0.3"), Length: d("0.1"), Height: d("0.1")}
	fit := core.BestFit(dims("0.1", "0.1", "0.1"), cell)
	require.NotNil(t, fit)
	assert.Equal(t, 3, fit.MaxUnits)
}

func TestBestFit_Unbounded(t *testing.T) {
	fit := core.BestFit(dims("1", "2", "3"), nil)
	require.NotNil(t, fit)
	assert.True(t, fit.Unbounded)
	assert.True(t, fit.Height.Equal(d("3")))

	fit = core.BestFit(core.Dims{Width: d("1")}, &core.CellDims{Width: d("1"), Length: d("1"), Height: d("1")})
	require.NotNil(t, fit)
	assert.True(t, fit.Unbounded, "missing dimensions are unconstrained")
}

func TestUnitPlacements_LayersBottomUp(t *testing.T) {
	cell := &core.CellDims{Width: d("2"), Length: d("2"), Height: d("3")}
	fit := core.BestFit(dims("1", "1", "1"), cell)
	require.NotNil(t, fit)

	placements := fit.UnitPlacements(5, cell)
	require.Len(t, placements, 5)

	for i := 0; i < 4; i++ {
		assert.True(t, placements[i].Y.IsZero(), "unit %d should be on the floor", i)
	}
	assert.True(t, placements[4].Y.Equal(d("1")))
	assert.True(t, placements[1].X.Equal(d("1")))
	assert.True(t, placements[2].Z.Equal(d("1")))

	assert.Len(t, fit.UnitPlacements(50, cell), 12, "never more than the cell holds")
	assert.Nil(t, fit.UnitPlacements(0, cell))
}

func TestUnitPlacements_CentresFootprint(t *testing.T) {
	cell := &core.CellDims{Width: d("3"), Length: d("1"), Height: d("1")}
	fit := core.BestFit(dims("2", "1", "1"), cell)
	require.NotNil(t, fit)

	placements := fit.UnitPlacements(1, cell)
	require.Len(t, placements, 1)
	assert.True(t, placements[0].X.Equal(d("0.5")))
}

func TestUnitPlacements_UnboundedStacks(t *testing.T) {
	fit := core.BestFit(dims("1", "1", "0.5"), nil)
	placements := fit.UnitPlacements(3, nil)
	require.Len(t, placements, 3)
	assert.True(t, placements[2].Y.Equal(d("1")))
}
