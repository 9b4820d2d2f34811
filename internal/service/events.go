package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// EventService orchestrates event-level operations.
type EventService struct {
	events        EventStore
	registrations RegistrationStore
	log           zerolog.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, registrations RegistrationStore, log zerolog.Logger) *EventService {
	return &EventService{events: events, registrations: registrations, log: log}
}

// Create validates the request and persists a new event. A capacity of zero
// is allowed and means the event is closed to registration.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(req); err != nil {
		return model.Event{}, err
	}

	event := model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Venue:       req.Venue,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		Registered:  0,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	s.log.Info().Str("event_id", event.ID).Int("capacity", event.Capacity).Msg("event created")
	return event, nil
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (model.Event, error) {
	if id == "" {
		return model.Event{}, fmt.Errorf("%w: event id is required", model.ErrValidation)
	}
	return s.events.GetByID(ctx, id)
}

// Delete removes an event and all its registrations. The capacity counter
// lives on the event row, so it disappears with it.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if _, err := s.events.GetByID(ctx, id); err != nil {
		return err
	}
	removed, err := s.registrations.DeleteByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade registrations: %w", err)
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info().Str("event_id", id).Int("registrations_removed", removed).Msg("event deleted")
	return nil
}

// CapacityStatus reports the configured capacity and the committed count for
// an event.
func (s *EventService) CapacityStatus(ctx context.Context, id string) (model.CapacityStatus, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return model.CapacityStatus{}, err
	}
	return model.CapacityStatus{
		EventID:    event.ID,
		Capacity:   event.Capacity,
		Registered: event.Registered,
	}, nil
}
