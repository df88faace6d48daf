package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListLocations handles GET /locations
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.ListLocations(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := make([]locationView, 0, len(locations))
	for i := range locations {
		out = append(out, newLocationView(&locations[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLocation handles GET /locations/{id}
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.locations.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLocationView(loc))
}
