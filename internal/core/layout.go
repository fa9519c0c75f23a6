package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CellState is the layout state of one grid cell.
type CellState string

const (
	CellAvailable  CellState = "D"
	CellRestricted CellState = "A" // available, restricted height
	CellBlocked    CellState = "B"
	CellOccupied   CellState = "O" // permanently occupied
)

// Blocking reports whether a cell in this state can never hold a location.
func (s CellState) Blocking() bool {
	return s == CellBlocked || s == CellOccupied
}

// CellMap maps a linear cell index (y*gridWidth + x) to its state.
// Absent indices are CellAvailable. A CellMap is never mutated after
// construction.
type CellMap struct {
	states map[int]CellState
}

// NewCellMap copies states into a CellMap.
func NewCellMap(states map[int]CellState) CellMap {
	m := make(map[int]CellState, len(states))
	for k, v := range states {
		m[k] = v
	}
	return CellMap{states: m}
}

// ParseCellMap decodes a serialised cell map. Both a JSON object keyed by
// index ({"3":"B"}) and a JSON array of states are accepted. Anything that
// fails to parse yields an empty map.
func ParseCellMap(raw []byte) CellMap {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return CellMap{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []CellState
		if err := json.Unmarshal(raw, &list); err != nil {
			return CellMap{}
		}
		states := make(map[int]CellState, len(list))
		for i, s := range list {
			if s != "" {
				states[i] = s
			}
		}
		return CellMap{states: states}
	}

	var obj map[string]CellState
	if err := json.Unmarshal(raw, &obj); err != nil {
		return CellMap{}
	}
	states := make(map[int]CellState, len(obj))
	for k, s := range obj {
		idx, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || idx < 0 {
			continue
		}
		states[idx] = s
	}
	return CellMap{states: states}
}

// State returns the state at index, defaulting to CellAvailable.
func (m CellMap) State(index int) CellState {
	if s, ok := m.states[index]; ok && s != "" {
		return s
	}
	return CellAvailable
}

// Len returns the number of explicitly set cells.
func (m CellMap) Len() int {
	return len(m.states)
}

// MarshalJSON encodes the map as an object keyed by decimal index, which is
// the form ParseCellMap and the layouts table use.
func (m CellMap) MarshalJSON() ([]byte, error) {
	obj := make(map[string]CellState, len(m.states))
	for k, v := range m.states {
		obj[strconv.Itoa(k)] = v
	}
	return json.Marshal(obj)
}

// UnmarshalJSON accepts any form ParseCellMap accepts, failing soft.
func (m *CellMap) UnmarshalJSON(data []byte) error {
	*m = ParseCellMap(data)
	return nil
}

// GridCell is a coordinate on the layout grid.
type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Name returns the conventional location name for the cell.
func (c GridCell) Name() string {
	return fmt.Sprintf("C-%d-%d", c.X, c.Y)
}

// Layout is the grid description of one warehouse.
type Layout struct {
	WarehouseID int     `json:"warehouse_id"`
	GridWidth   int     `json:"width"`
	GridLength  int     `json:"length"`
	Cells       CellMap `json:"cells"`
}

// Usable reports whether the grid has positive dimensions. An unusable
// layout is treated as absent.
func (l *Layout) Usable() bool {
	return l != nil && l.GridWidth > 0 && l.GridLength > 0
}

// LocationBlocked reports whether the cell at (x, y) is B or O.
// A nil or unusable layout blocks nothing.
func (l *Layout) LocationBlocked(x, y int) bool {
	if !l.Usable() {
		return false
	}
	return l.Cells.State(y*l.GridWidth+x).Blocking()
}

// OpenCells lists every non-blocking cell in index order.
func (l *Layout) OpenCells() []GridCell {
	if !l.Usable() {
		return nil
	}
	total := l.GridWidth * l.GridLength
	cells := make([]GridCell, 0, total)
	for index := 0; index < total; index++ {
		if l.Cells.State(index).Blocking() {
			continue
		}
		cells = append(cells, GridCell{X: index % l.GridWidth, Y: index / l.GridWidth})
	}
	return cells
}

// MaxGridCells bounds width*length of a stored layout. Every open cell
// becomes a location row.
const MaxGridCells = 250_000

// Validate checks a layout submitted for storage.
func (l *Layout) Validate() error {
	if l.GridWidth <= 0 || l.GridLength <= 0 {
		return NewError(KindInvalidInput, "layout dimensions must be positive, got %dx%d", l.GridWidth, l.GridLength)
	}
	// Divide first so the product cannot overflow.
	if l.GridWidth > MaxGridCells/l.GridLength {
		return NewError(KindInvalidInput, "layout %dx%d exceeds %d cells", l.GridWidth, l.GridLength, MaxGridCells)
	}
	total := l.GridWidth * l.GridLength
	indices := make([]int, 0, len(l.Cells.states))
	for idx := range l.Cells.states {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		if idx >= total {
			return NewError(KindInvalidInput, "cell index %d outside %dx%d grid", idx, l.GridWidth, l.GridLength)
		}
		switch s := l.Cells.states[idx]; s {
		case CellAvailable, CellRestricted, CellBlocked, CellOccupied:
		default:
			return NewError(KindInvalidInput, "cell %d has unknown state %q", idx, s)
		}
	}
	return nil
}
