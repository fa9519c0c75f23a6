package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"warehouse-slotting/internal/core"
	"warehouse-slotting/internal/logging"
)

type errorResponse struct {
	Error      string           `json:"error"`
	Code       string           `json:"code"`
	RequestID  string           `json:"request_id,omitempty"`
	Shortfalls []core.Shortfall `json:"shortfalls,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusForKind maps an engine error kind to an HTTP status.
func statusForKind(kind core.Kind) int {
	switch kind {
	case core.KindInvalidInput:
		return http.StatusBadRequest
	case core.KindWarehouseNotFound, core.KindItemNotFound:
		return http.StatusNotFound
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

// writeServiceError turns an error returned by the application service into
// a response. Errors without a kind are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *core.Error
	if !errors.As(err, &e) {
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeErrorResponse(w, r, errorResponse{
		Error:      e.Message,
		Code:       string(e.Kind),
		Shortfalls: core.ShortfallsOf(err),
	}, statusForKind(e.Kind))
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
