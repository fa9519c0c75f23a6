package core

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// SlottingService places items into warehouse cells and re-plans their
// placement. Every operation holds the warehouse lock for its whole
// read-plan-write sequence.
type SlottingService interface {
	// AssignOneUnit stores one unit of an item on an existing stack with room
	// or on the first empty location. Best-effort: not a unit of work.
	AssignOneUnit(ctx context.Context, warehouseID, itemID int) (*Assignment, error)

	// OptimizeSimple relocates movable units into empty locations, largest
	// volume first. Best-effort: moves are applied one by one.
	OptimizeSimple(ctx context.Context, warehouseID int) (*MoveResult, error)

	// RecompactByPriority packs the listed items into the front of the grid,
	// highest priority first. All-or-nothing.
	RecompactByPriority(ctx context.Context, warehouseID int, priorities []ItemPriority) (*CompactionSummary, error)

	// CompactAll re-plans every movable unit of the warehouse. With dryRun the
	// move list is returned without writing. All-or-nothing.
	CompactAll(ctx context.Context, warehouseID int, dryRun bool) (*MoveResult, error)

	// GetLayout returns the warehouse layout, or nil when none is stored.
	GetLayout(ctx context.Context, warehouseID int) (*Layout, error)

	// SaveLayout stores a layout and regenerates the warehouse's locations from
	// it. Returns the number of locations created.
	SaveLayout(ctx context.Context, layout Layout) (int, error)

	// RegenerateLocations deletes and recreates all locations from the stored
	// layout. Stock at removed locations is discarded.
	RegenerateLocations(ctx context.Context, warehouseID int) (int, error)

	// ListLocations returns active locations with their stock. With
	// expandUnits every item carries its fit and per-unit placements.
	ListLocations(ctx context.Context, warehouseID int, expandUnits bool) ([]LocationView, error)
}

// PlannerPolicy holds the switches of the compaction planners.
type PlannerPolicy struct {
	// ExclusiveCells keeps every cell a priority compaction touches
	// homogeneous: one item type per cell.
	ExclusiveCells bool
	// ExclusiveWhenUnconstrained applies the same rule to warehouses
	// without a usable layout, where cell capacity is unbounded.
	ExclusiveWhenUnconstrained bool
}

// DefaultPlannerPolicy returns the policy used when none is configured.
func DefaultPlannerPolicy() PlannerPolicy {
	return PlannerPolicy{ExclusiveCells: true, ExclusiveWhenUnconstrained: true}
}

type slottingService struct {
	store  Store
	locker Locker
	policy PlannerPolicy
	logger *log.Logger
}

// NewSlottingService wires a SlottingService. A nil locker serialises within
// the process only; a nil logger discards debug output.
func NewSlottingService(store Store, locker Locker, policy PlannerPolicy, logger *log.Logger) SlottingService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &slottingService{store: store, locker: locker, policy: policy, logger: logger}
}

// withWarehouse validates the id and runs fn while holding the warehouse lock.
func (s *slottingService) withWarehouse(ctx context.Context, warehouseID int, fn func() error) error {
	if warehouseID <= 0 {
		return NewError(KindInvalidInput, "invalid warehouse id %d", warehouseID)
	}
	unlock, err := s.locker.Lock(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("failed to lock warehouse %d: %w", warehouseID, err)
	}
	defer unlock()
	return fn()
}

// loadCell resolves the warehouse, its layout and the standard cell size.
func (s *slottingService) loadCell(ctx context.Context, warehouseID int) (*Layout, *CellDims, error) {
	wh, err := s.store.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, nil, err
	}
	layout, err := s.store.GetLayout(ctx, warehouseID)
	if err != nil {
		return nil, nil, err
	}
	return layout, StandardCell(wh, layout), nil
}

// destinations drops locations blocked by the layout, keeping order.
func destinations(locations []Location, layout *Layout) []Location {
	out := make([]Location, 0, len(locations))
	for _, loc := range locations {
		if layout.LocationBlocked(loc.X, loc.Y) {
			continue
		}
		out = append(out, loc)
	}
	return out
}
