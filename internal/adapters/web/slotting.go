package web

import (
	"net/http"

	"warehouse-slotting/internal/app"
	"warehouse-slotting/internal/logging"
)

// auditLog records who triggered a state-changing run.
func auditLog(r *http.Request, action string, warehouseID int) {
	subject := "anonymous"
	if c := authFromContext(r.Context()); c != nil && c.Subject != "" {
		subject = c.Subject
	}
	logging.FromContext(r.Context()).Info(action, "warehouse", warehouseID, "subject", subject)
}

// placeUnit handles POST /api/warehouses/{id}/items/auto.
func (h *Handler) placeUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	var req app.PlaceUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.WarehouseID = id

	res, err := h.svc.PlaceUnit(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	auditLog(r, "unit placed", id)
	writeJSONStatus(w, http.StatusCreated, res)
}

// optimizeSimple handles POST /api/warehouses/{id}/optimize-simple.
func (h *Handler) optimizeSimple(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.OptimizeSimple(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	auditLog(r, "simple fill", id)
	writeJSON(w, res)
}

// recompactPriority handles POST /api/warehouses/{id}/recompact-priority.
func (h *Handler) recompactPriority(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	var req app.RecompactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.WarehouseID = id

	res, err := h.svc.RecompactByPriority(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	auditLog(r, "priority compaction", id)
	writeJSON(w, res)
}

// compactTetris handles POST /api/warehouses/{id}/compact-tetris.
// dry_run may come from the body or the query string.
func (h *Handler) compactTetris(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	var req app.CompactRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	req.WarehouseID = id
	if queryBool(r, "dry_run") {
		req.DryRun = true
	}

	res, err := h.svc.CompactWarehouse(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !req.DryRun {
		auditLog(r, "warehouse compaction", id)
	}
	writeJSON(w, res)
}

// getLayout handles GET /api/warehouses/{id}/layout.
func (h *Handler) getLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetLayout(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// saveLayout handles PUT /api/warehouses/{id}/layout.
func (h *Handler) saveLayout(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	var req app.SaveLayoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.WarehouseID = id

	res, err := h.svc.SaveLayout(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	auditLog(r, "layout saved", id)
	writeJSON(w, res)
}

// regenerateLocations handles POST /api/warehouses/{id}/locations/regenerate.
func (h *Handler) regenerateLocations(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.RegenerateLocations(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	auditLog(r, "locations regenerated", id)
	writeJSON(w, res)
}

// listLocations handles GET /api/warehouses/{id}/locations?expand_units=1.
func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	id, ok := warehouseID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ListLocations(r.Context(), app.ListLocationsRequest{
		WarehouseID: id,
		ExpandUnits: queryBool(r, "expand_units"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
