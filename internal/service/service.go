// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the storage layer. Every registration source
// (self-service, organizer-assisted, bulk import) funnels through the single
// commit protocol in RegistrationService.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e model.Event) error
	GetByID(ctx context.Context, id string) (model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Delete(ctx context.Context, id string) error
}

// CapacityLedger grants and releases admission slots for an event. TryAdmit is
// an atomic check-and-increment: it must never let two callers both take the
// last open slot.
type CapacityLedger interface {
	TryAdmit(ctx context.Context, eventID string) error
	Release(ctx context.Context, eventID string) error
}

// ParticipantStore resolves contact rows to stable participant records keyed
// by canonical email. Resolve is an atomic find-or-create: concurrent calls
// for the same identity key yield exactly one record.
type ParticipantStore interface {
	Resolve(ctx context.Context, contact model.Contact) (participant model.Participant, created bool, err error)
	GetByID(ctx context.Context, id string) (model.Participant, error)
	List(ctx context.Context) ([]model.Participant, error)
	UpdateProfile(ctx context.Context, id string, upd model.UpdateParticipantRequest) (model.Participant, error)
	Delete(ctx context.Context, id string) error
}

// RegistrationStore persists registrations and is the source of truth for the
// (event, participant) uniqueness invariant: Create must fail with
// model.ErrAlreadyRegistered on a pair conflict regardless of any upstream
// duplicate check.
type RegistrationStore interface {
	Create(ctx context.Context, reg model.Registration) error
	Exists(ctx context.Context, eventID, participantID string) (bool, error)
	Delete(ctx context.Context, id string) (model.Registration, error)
	DeleteByEvent(ctx context.Context, eventID string) (int, error)
	DeleteByParticipant(ctx context.Context, participantID string) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error)
	ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct maps validator failures onto the domain validation error so
// handlers can translate them uniformly.
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			fe := vErrs[0]
			return fmt.Errorf("%w: field %s failed %q", model.ErrValidation, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return nil
}
