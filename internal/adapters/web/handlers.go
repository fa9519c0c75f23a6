package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"warehouse-slotting/internal/app"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes. Warehouse
// routes require a bearer token only when jwtSecret is set.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Get("/api/schemas/{name}", h.schema)

	// ── Warehouse slotting ────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		if jwtSecret != "" {
			r.Use(h.RequireAuth)
		}
		r.Use(middleware.RequestSize(maxBodyBytes))

		r.Route("/api/warehouses/{id}", func(r chi.Router) {
			r.Post("/items/auto", h.placeUnit)
			r.Post("/optimize-simple", h.optimizeSimple)
			r.Post("/recompact-priority", h.recompactPriority)
			r.Post("/compact-tetris", h.compactTetris)

			r.Get("/layout", h.getLayout)
			r.Put("/layout", h.saveLayout)
			r.Post("/locations/regenerate", h.regenerateLocations)
			r.Get("/locations", h.listLocations)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// warehouseID extracts the {id} URL parameter, writing a 400 when it is not
// a positive integer.
func warehouseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "warehouse id must be a positive integer", "INVALID_INPUT", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by the RequestSize middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "INVALID_INPUT", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return false
	}
	writeError(w, r, "invalid JSON body: "+err.Error(), "INVALID_INPUT", http.StatusBadRequest)
	return false
}

// queryBool reports whether the query parameter is set to a true value.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
