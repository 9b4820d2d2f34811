package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter builds the chi router with the global middleware stack and all
// API routes.
func NewRouter(h *Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(AccessLog(log))          // structured access log
	r.Use(CORS)                    // permissive CORS for the SPA frontend

	r.Get("/health", HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Delete("/{id}", h.DeleteEvent)
		r.Get("/{id}/capacity", h.EventCapacity)
		r.Post("/{id}/register", h.Register)
		r.Get("/{id}/roster", h.Roster)
		r.Post("/{id}/reconcile", h.Reconcile)
	})

	r.Delete("/registrations/{id}", h.Unregister)

	r.Route("/participants", func(r chi.Router) {
		r.Get("/", h.ListParticipants)
		r.Get("/{id}", h.GetParticipant)
		r.Put("/{id}", h.UpdateParticipant)
		r.Delete("/{id}", h.DeleteParticipant)
		r.Get("/{id}/events", h.ParticipantEvents)
	})

	return r
}
