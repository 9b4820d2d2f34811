package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PragadheeshPandian123/college-event-registration/internal/metrics"
	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// ParticipantService handles participant lookup, profile maintenance and
// cascading deletion.
type ParticipantService struct {
	events        EventStore
	participants  ParticipantStore
	registrations RegistrationStore
	ledger        CapacityLedger
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(
	events EventStore,
	participants ParticipantStore,
	registrations RegistrationStore,
	ledger CapacityLedger,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ParticipantService {
	return &ParticipantService{
		events:        events,
		participants:  participants,
		registrations: registrations,
		ledger:        ledger,
		metrics:       m,
		log:           log,
	}
}

// List returns all known participants.
func (s *ParticipantService) List(ctx context.Context) ([]model.Participant, error) {
	participants, err := s.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// Get returns one participant by ID.
func (s *ParticipantService) Get(ctx context.Context, id string) (model.Participant, error) {
	if id == "" {
		return model.Participant{}, fmt.Errorf("%w: participant id is required", model.ErrValidation)
	}
	return s.participants.GetByID(ctx, id)
}

// UpdateProfile applies a last-write-wins update to the non-identity profile
// fields. The canonical email cannot be changed through this path.
func (s *ParticipantService) UpdateProfile(ctx context.Context, id string, upd model.UpdateParticipantRequest) (model.Participant, error) {
	if id == "" {
		return model.Participant{}, fmt.Errorf("%w: participant id is required", model.ErrValidation)
	}
	return s.participants.UpdateProfile(ctx, id, upd)
}

// Delete removes a participant, cascades to their registrations, and releases
// one capacity slot per removed registration.
func (s *ParticipantService) Delete(ctx context.Context, id string) error {
	if _, err := s.participants.GetByID(ctx, id); err != nil {
		return err
	}

	removed, err := s.registrations.DeleteByParticipant(ctx, id)
	if err != nil {
		return fmt.Errorf("cascade registrations: %w", err)
	}
	for _, reg := range removed {
		if err := s.ledger.Release(ctx, reg.EventID); err != nil {
			// The owning event may itself have been deleted concurrently.
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return fmt.Errorf("release capacity for event %s: %w", reg.EventID, err)
		}
		s.metrics.CapacityReleases.Inc()
	}

	if err := s.participants.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("participant_id", id).Int("registrations_removed", len(removed)).Msg("participant deleted")
	return nil
}

// RegisteredEvents returns the events a participant holds registrations for,
// joined with the registration record.
func (s *ParticipantService) RegisteredEvents(ctx context.Context, id string) ([]model.RegisteredEvent, error) {
	if _, err := s.participants.GetByID(ctx, id); err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByParticipant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	out := make([]model.RegisteredEvent, 0, len(regs))
	for _, reg := range regs {
		event, err := s.events.GetByID(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, model.RegisteredEvent{Registration: reg, Event: event})
	}
	return out, nil
}
