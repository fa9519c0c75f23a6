package core

import (
	"context"
	"sort"
)

// LocationView is an active location with the stock it holds.
type LocationView struct {
	Location
	Items []LocationItemView `json:"items"`
}

// LocationItemView is one stock row of a location. Fit and Placements are
// only filled when units are expanded.
type LocationItemView struct {
	ItemID     int             `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Qty        int             `json:"qty"`
	Movable    bool            `json:"movable"`
	Priority   int             `json:"priority"`
	Dims       Dims            `json:"dims"`
	Fit        *Fit            `json:"fit,omitempty"`
	Placements []UnitPlacement `json:"placements,omitempty"`
}

func (s *slottingService) ListLocations(ctx context.Context, warehouseID int, expandUnits bool) ([]LocationView, error) {
	if warehouseID <= 0 {
		return nil, NewError(KindInvalidInput, "invalid warehouse id %d", warehouseID)
	}
	_, cell, err := s.loadCell(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.ListActiveLocations(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	stock, err := s.store.ListStock(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return BuildLocationViews(locations, stock, cell, expandUnits), nil
}

// BuildLocationViews groups stock rows under their locations. Items inside a
// location are sorted by priority desc, then item id.
func BuildLocationViews(locations []Location, stock []StockRow, cell *CellDims, expandUnits bool) []LocationView {
	byLocation := make(map[int][]StockRow)
	for _, row := range stock {
		byLocation[row.LocationID] = append(byLocation[row.LocationID], row)
	}

	fits := make(map[int]*Fit)
	views := make([]LocationView, 0, len(locations))
	for _, loc := range locations {
		rows := byLocation[loc.ID]
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Priority != rows[j].Priority {
				return rows[i].Priority > rows[j].Priority
			}
			return rows[i].ItemID < rows[j].ItemID
		})

		view := LocationView{Location: loc, Items: make([]LocationItemView, 0, len(rows))}
		for _, row := range rows {
			iv := LocationItemView{
				ItemID:   row.ItemID,
				ItemName: row.ItemName,
				Qty:      row.Qty,
				Movable:  row.Movable,
				Priority: row.Priority,
				Dims:     row.ItemDims,
			}
			if expandUnits {
				fit, ok := fits[row.ItemID]
				if !ok {
					fit = BestFit(row.ItemDims, cell)
					fits[row.ItemID] = fit
				}
				if fit != nil {
					iv.Fit = fit
					iv.Placements = fit.UnitPlacements(row.Qty, cell)
				}
			}
			view.Items = append(view.Items, iv)
		}
		views = append(views, view)
	}
	return views
}
