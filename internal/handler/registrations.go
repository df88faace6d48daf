package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// CreateRegistration handles POST /registrations with body {"event": "<id>"}
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.register(w, r, req.EventID)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, eventID string) {
	reg, err := h.registrations.Register(r.Context(), ActorFrom(r.Context()), eventID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// ListRegistrations handles GET /registrations
// Admins see every registration; everyone else sees their own.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListAll(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if regs == nil {
		regs = []model.Registration{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// MyRegistrations handles GET /registrations/mine
func (h *Handler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	details, err := h.registrations.ListMine(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newMyRegistrationViews(details, h.events.Now()))
}

// GetRegistration handles GET /registrations/{id}
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrations.GetRegistration(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}

// Unregister handles POST /registrations/{id}/unregister and DELETE /registrations/{id}
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	if err := h.registrations.Unregister(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Successfully unregistered from event"})
}
