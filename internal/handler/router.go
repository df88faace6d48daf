package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the full HTTP routing tree.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(h.logger))        // structured access log
	r.Use(CORS)
	r.Use(h.Authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.With(RequireAuth).Get("/me", h.Me)
	})

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", h.ListLocations)
		r.Get("/{id}", h.GetLocation)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/", h.CreateEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Patch("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Post("/{id}/soft-delete", h.DeleteEvent)
			r.Get("/{id}/registrations", h.ListEventRegistrations)
			r.Post("/{id}/register", h.RegisterForEvent)
		})
	})

	r.Route("/registrations", func(r chi.Router) {
		r.Use(RequireAuth)
		r.Get("/", h.ListRegistrations)
		r.Post("/", h.CreateRegistration)
		r.Get("/mine", h.MyRegistrations)
		r.Get("/{id}", h.GetRegistration)
		r.Delete("/{id}", h.Unregister)
		r.Post("/{id}/unregister", h.Unregister)
	})

	return r
}
