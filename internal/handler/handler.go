// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
	"github.com/PragadheeshPandian123/college-event-registration/internal/service"
)

// Handler holds all HTTP handlers for the registration API.
type Handler struct {
	events        *service.EventService
	registrations *service.RegistrationService
	participants  *service.ParticipantService
}

// New constructs a Handler.
func New(
	events *service.EventService,
	registrations *service.RegistrationService,
	participants *service.ParticipantService,
) *Handler {
	return &Handler{
		events:        events,
		registrations: registrations,
		participants:  participants,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondDomainError maps domain errors onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "participant is already registered for this event")
	case errors.Is(err, model.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "event is fully booked")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Event handlers ───────────────────────────────────────────────────────────

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.Create(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id} and cascades registrations.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EventCapacity handles GET /events/{id}/capacity.
func (h *Handler) EventCapacity(w http.ResponseWriter, r *http.Request) {
	status, err := h.events.CapacityStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ─── Registration handlers ────────────────────────────────────────────────────

// Register handles POST /events/{id}/register for the self-service and
// organizer-assisted entry points.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Source == model.SourceImport {
		writeError(w, http.StatusBadRequest, "source import is reserved for reconciliation")
		return
	}
	reg, err := h.registrations.Register(r.Context(), chi.URLParam(r, "id"), req.Contact, req.Source)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// Roster handles GET /events/{id}/roster.
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	entries, err := h.registrations.Roster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Reconcile handles POST /events/{id}/reconcile. Per-row duplicates and
// capacity rejections are reported in the summary, not as an HTTP error.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req model.ReconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	summary, err := h.registrations.Reconcile(r.Context(), chi.URLParam(r, "id"), req.Rows)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Unregister handles DELETE /registrations/{id} and releases the capacity
// slot.
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	if err := h.registrations.Unregister(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Participant handlers ─────────────────────────────────────────────────────

// ListParticipants handles GET /participants.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participants.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// GetParticipant handles GET /participants/{id}.
func (h *Handler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	participant, err := h.participants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// UpdateParticipant handles PUT /participants/{id}. Only profile fields can
// change; the identity email is immutable.
func (h *Handler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	participant, err := h.participants.UpdateProfile(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

// DeleteParticipant handles DELETE /participants/{id}, cascading
// registrations and releasing their capacity slots.
func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.participants.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ParticipantEvents handles GET /participants/{id}/events.
func (h *Handler) ParticipantEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.participants.RegisteredEvents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
