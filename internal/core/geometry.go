package core

import "github.com/shopspring/decimal"

// CellDims is the physical size of one standard grid cell. A cell spans the
// full warehouse height.
type CellDims struct {
	Width  decimal.Decimal `json:"width"`
	Length decimal.Decimal `json:"length"`
	Height decimal.Decimal `json:"height"`
}

// StandardCell derives the cell size from the warehouse extents and grid.
// It returns nil when any of the five inputs is not positive, which callers
// treat as unconstrained.
func StandardCell(w *Warehouse, l *Layout) *CellDims {
	if w == nil || l == nil {
		return nil
	}
	if !w.Width.IsPositive() || !w.Length.IsPositive() || !w.Height.IsPositive() {
		return nil
	}
	if !l.Usable() {
		return nil
	}
	return &CellDims{
		Width:  w.Width.Div(decimal.NewFromInt(int64(l.GridWidth))),
		Length: w.Length.Div(decimal.NewFromInt(int64(l.GridLength))),
		Height: w.Height,
	}
}
