package web

import (
	"net/http"
	"sort"
	"strings"

	"warehouse-slotting/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
)

// requestSchemas lists the request bodies published at /api/schemas/{name}.
var requestSchemas = map[string]any{
	"place-unit":         app.PlaceUnitRequest{},
	"recompact-priority": app.RecompactRequest{},
	"compact-tetris":     app.CompactRequest{},
	"layout":             app.SaveLayoutRequest{},
}

// RequestSchema reflects the JSON schema of a named request body.
func RequestSchema(name string) (*jsonschema.Schema, bool) {
	v, ok := requestSchemas[name]
	if !ok {
		return nil, false
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v), true
}

// schema handles GET /api/schemas/{name}.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, ok := RequestSchema(name)
	if !ok {
		names := make([]string, 0, len(requestSchemas))
		for n := range requestSchemas {
			names = append(names, n)
		}
		sort.Strings(names)
		writeError(w, r, "unknown schema "+name+"; known: "+strings.Join(names, ", "), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, s)
}
