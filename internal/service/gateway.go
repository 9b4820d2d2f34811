package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PragadheeshPandian123/college-event-registration/internal/metrics"
	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// RegistrationService is the single entry point every registration source
// goes through. It owns the commit protocol:
//
//	validate -> resolve identity -> duplicate check -> admit -> record
//
// The duplicate check runs before admission so a flood of duplicate
// submissions cannot exhaust capacity. The residual race (another commit for
// the same pair landing between check and record) is handled by releasing the
// admitted slot and reporting the attempt as a duplicate.
type RegistrationService struct {
	events        EventStore
	participants  ParticipantStore
	registrations RegistrationStore
	ledger        CapacityLedger
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

// NewRegistrationService constructs a RegistrationService with its
// dependencies.
func NewRegistrationService(
	events EventStore,
	participants ParticipantStore,
	registrations RegistrationStore,
	ledger CapacityLedger,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		events:        events,
		participants:  participants,
		registrations: registrations,
		ledger:        ledger,
		metrics:       m,
		log:           log,
	}
}

// Register performs one registration attempt for the given event. It returns
// the recorded registration, or one of the domain errors: ErrValidation,
// ErrNotFound, ErrAlreadyRegistered, ErrCapacityExceeded. Every rejection
// leaves zero net mutation behind.
func (s *RegistrationService) Register(ctx context.Context, eventID string, contact model.Contact, source model.Source) (model.Registration, error) {
	if source == "" {
		source = model.SourceSelf
	}
	if !source.Valid() {
		return model.Registration{}, fmt.Errorf("%w: unknown source %q", model.ErrValidation, source)
	}

	contact = contact.Normalized()
	if err := validateStruct(contact); err != nil {
		s.metrics.RejectionsTotal.WithLabelValues("validation").Inc()
		return model.Registration{}, err
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return model.Registration{}, err
	}

	participant, _, err := s.participants.Resolve(ctx, contact)
	if err != nil {
		return model.Registration{}, err
	}

	reg, err := s.commit(ctx, eventID, participant.ID, source)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyRegistered):
			s.metrics.RejectionsTotal.WithLabelValues("already_registered").Inc()
		case errors.Is(err, model.ErrCapacityExceeded):
			s.metrics.RejectionsTotal.WithLabelValues("capacity").Inc()
		}
		return model.Registration{}, err
	}

	s.metrics.RegistrationsTotal.WithLabelValues(string(source)).Inc()
	s.log.Info().
		Str("event_id", eventID).
		Str("participant_id", participant.ID).
		Str("source", string(source)).
		Msg("registration recorded")
	return reg, nil
}

// commit runs the admit-then-record steps for an already resolved
// participant. Callers have verified the event exists.
func (s *RegistrationService) commit(ctx context.Context, eventID, participantID string, source model.Source) (model.Registration, error) {
	exists, err := s.registrations.Exists(ctx, eventID, participantID)
	if err != nil {
		return model.Registration{}, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return model.Registration{}, model.ErrAlreadyRegistered
	}

	if err := s.ledger.TryAdmit(ctx, eventID); err != nil {
		return model.Registration{}, err
	}

	reg := model.Registration{
		ID:            uuid.New().String(),
		EventID:       eventID,
		ParticipantID: participantID,
		Source:        source,
		RegisteredAt:  time.Now().UTC(),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		// The slot was admitted but the record lost a race; give the slot
		// back before surfacing the outcome.
		if rerr := s.ledger.Release(ctx, eventID); rerr != nil {
			s.log.Error().Err(rerr).Str("event_id", eventID).Msg("failed to release admitted slot")
		} else {
			s.metrics.CapacityReleases.Inc()
		}
		return model.Registration{}, err
	}
	return reg, nil
}

// Unregister deletes a registration and releases its capacity slot.
func (s *RegistrationService) Unregister(ctx context.Context, registrationID string) error {
	if registrationID == "" {
		return fmt.Errorf("%w: registration id is required", model.ErrValidation)
	}
	reg, err := s.registrations.Delete(ctx, registrationID)
	if err != nil {
		return err
	}
	if err := s.ledger.Release(ctx, reg.EventID); err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("release capacity: %w", err)
	}
	s.metrics.CapacityReleases.Inc()
	s.log.Info().
		Str("registration_id", registrationID).
		Str("event_id", reg.EventID).
		Msg("registration removed")
	return nil
}

// Roster returns all registrations for an event joined with participant
// profiles.
func (s *RegistrationService) Roster(ctx context.Context, eventID string) ([]model.RosterEntry, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	entries, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	if entries == nil {
		entries = []model.RosterEntry{}
	}
	return entries, nil
}
