package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// CreateEvent handles POST /events. The role gate runs before the body is
// read, so non-admins get 403 whatever they send.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if err := h.events.CanCreate(actor); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var req model.CreateEventRequest
	if !h.bind(w, r, &req) {
		return
	}

	event, err := h.events.CreateEvent(r.Context(), actor, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newEventView(event, h.events.Now()))
}

// ListEvents handles GET /events?filter=upcoming|past
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := model.ParseEventFilter(r.URL.Query().Get("filter"))

	events, err := h.events.ListEvents(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventViews(events, h.events.Now()))
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventView(event, h.events.Now()))
}

// UpdateEvent handles PUT and PATCH /events/{id}. Absent fields are kept.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if err := h.events.CanUpdate(actor); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var req model.UpdateEventRequest
	if !h.bind(w, r, &req) {
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), actor, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventView(event, h.events.Now()))
}

// DeleteEvent handles DELETE /events/{id} and POST /events/{id}/soft-delete
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Event deleted successfully"})
}

// ListEventRegistrations handles GET /events/{id}/registrations
func (h *Handler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListForEvent(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if regs == nil {
		regs = []model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// RegisterForEvent handles POST /events/{id}/register
func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, chi.URLParam(r, "id"))
}
