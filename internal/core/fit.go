package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// Fit describes how an item is oriented and stacked inside a standard cell.
// Width runs along the cell width, Length along the cell length and Height is
// the vertical extent of one unit.
type Fit struct {
	Width     decimal.Decimal `json:"width"`
	Length    decimal.Decimal `json:"length"`
	Height    decimal.Decimal `json:"height"`
	PerRow    int             `json:"per_row"`
	PerCol    int             `json:"per_col"`
	PerLayer  int             `json:"per_layer"`
	Layers    int             `json:"layers"`
	MaxUnits  int             `json:"max_units"`
	Unbounded bool            `json:"unbounded,omitempty"`
}

// Capacity is the number of units one cell may hold, never less than one.
func (f *Fit) Capacity() int {
	if f.MaxUnits < 1 {
		return 1
	}
	return f.MaxUnits
}

// axis order: width, height, length
var orientations = [6][3]int{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

// BestFit picks the axis-aligned orientation of item that stores the most
// units in cell. Ties go to more layers, then to the smaller footprint; the
// first orientation wins an exact tie.
//
// A nil cell, or an item with a missing dimension, yields an unbounded fit in
// the item's native orientation. A nil result means the item fits in no
// orientation.
func BestFit(item Dims, cell *CellDims) *Fit {
	if cell == nil || !item.Complete() {
		return unboundedFit(item)
	}

	dims := [3]decimal.Decimal{item.Width, item.Length, item.Height}

	var best *Fit
	var bestArea decimal.Decimal
	for _, o := range orientations {
		w, h, l := dims[o[0]], dims[o[1]], dims[o[2]]
		if w.GreaterThan(cell.Width) || l.GreaterThan(cell.Length) || h.GreaterThan(cell.Height) {
			continue
		}

		perRow := max(1, floorDiv(cell.Width, w))
		perCol := max(1, floorDiv(cell.Length, l))
		perLayer := perRow * perCol
		layers := max(1, floorDiv(cell.Height, h))
		area := w.Mul(l)

		cand := &Fit{
			Width:    w,
			Length:   l,
			Height:   h,
			PerRow:   perRow,
			PerCol:   perCol,
			PerLayer: perLayer,
			Layers:   layers,
			MaxUnits: perLayer * layers,
		}
		if best == nil || betterFit(cand, area, best, bestArea) {
			best, bestArea = cand, area
		}
	}
	return best
}

func betterFit(a *Fit, aArea decimal.Decimal, b *Fit, bArea decimal.Decimal) bool {
	if a.MaxUnits != b.MaxUnits {
		return a.MaxUnits > b.MaxUnits
	}
	if a.Layers != b.Layers {
		return a.Layers > b.Layers
	}
	return aArea.LessThan(bArea)
}

func unboundedFit(item Dims) *Fit {
	return &Fit{
		Width:     item.Width,
		Length:    item.Length,
		Height:    item.Height,
		PerRow:    math.MaxInt,
		PerCol:    math.MaxInt,
		PerLayer:  math.MaxInt,
		Layers:    math.MaxInt,
		MaxUnits:  math.MaxInt,
		Unbounded: true,
	}
}

// floorDiv returns floor(a/b) for positive a and b without rounding error.
func floorDiv(a, b decimal.Decimal) int {
	if !b.IsPositive() || a.IsNegative() {
		return 0
	}
	q, _ := a.QuoRem(b, 0)
	return int(q.IntPart())
}

// UnitPlacement is the box one unit occupies inside its cell. Y is vertical.
type UnitPlacement struct {
	X decimal.Decimal `json:"x"`
	Y decimal.Decimal `json:"y"`
	Z decimal.Decimal `json:"z"`
	W decimal.Decimal `json:"w"`
	L decimal.Decimal `json:"l"`
	H decimal.Decimal `json:"h"`
}

// UnitPlacements lays qty units out inside cell: row-major within a layer,
// layers bottom-up, the used footprint centred on the cell floor. Without a
// cell the units form a single vertical stack. At most MaxUnits units are
// returned.
func (f *Fit) UnitPlacements(qty int, cell *CellDims) []UnitPlacement {
	if qty <= 0 {
		return nil
	}

	if cell == nil || f.Unbounded || f.PerLayer <= 0 {
		out := make([]UnitPlacement, 0, qty)
		for i := 0; i < qty; i++ {
			out = append(out, UnitPlacement{
				X: decimal.Zero,
				Y: f.Height.Mul(decimal.NewFromInt(int64(i))),
				Z: decimal.Zero,
				W: f.Width, L: f.Length, H: f.Height,
			})
		}
		return out
	}

	perRow := max(1, f.PerRow)
	perLayer := max(1, f.PerLayer)
	two := decimal.NewFromInt(2)

	usedX := f.Width.Mul(decimal.NewFromInt(int64(perRow)))
	usedZ := f.Length.Mul(decimal.NewFromInt(int64(max(1, f.PerCol))))
	startX := decimal.Max(decimal.Zero, cell.Width.Sub(usedX).Div(two))
	startZ := decimal.Max(decimal.Zero, cell.Length.Sub(usedZ).Div(two))

	n := min(qty, f.MaxUnits)
	out := make([]UnitPlacement, 0, n)
	for i := 0; i < n; i++ {
		layer := i / perLayer
		within := i % perLayer
		rx := within % perRow
		rz := within / perRow
		out = append(out, UnitPlacement{
			X: startX.Add(f.Width.Mul(decimal.NewFromInt(int64(rx)))),
			Y: f.Height.Mul(decimal.NewFromInt(int64(layer))),
			Z: startZ.Add(f.Length.Mul(decimal.NewFromInt(int64(rz)))),
			W: f.Width, L: f.Length, H: f.Height,
		})
	}
	return out
}
