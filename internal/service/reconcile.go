package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// Reconcile merges a batch of externally collected contact rows for one event
// against the already-known registrations. Each row runs through the same
// commit protocol as a direct registration, tagged with source "import".
// Rows are independent: a duplicate or capacity rejection is counted in the
// summary and never aborts the remaining rows, and there is no batch-level
// rollback. Rerunning the same batch is idempotent.
func (s *RegistrationService) Reconcile(ctx context.Context, eventID string, rows []model.Contact) (model.ReconcileSummary, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return model.ReconcileSummary{}, err
	}

	summary := model.ReconcileSummary{
		Skipped:             []model.SkippedRow{},
		DuplicateIdentities: []model.DuplicateIdentity{},
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rowNum := i + 1
		row = row.Normalized()
		if err := validateStruct(row); err != nil {
			summary.Skipped = append(summary.Skipped, model.SkippedRow{
				Row:    rowNum,
				Reason: "missing or malformed email",
			})
			s.metrics.ReconcileRows.WithLabelValues("skipped").Inc()
			continue
		}

		participant, created, err := s.participants.Resolve(ctx, row)
		if err != nil {
			return summary, fmt.Errorf("resolve row %d: %w", rowNum, err)
		}
		if created {
			summary.InsertedParticipants++
		}

		_, err = s.commit(ctx, eventID, participant.ID, model.SourceImport)
		switch {
		case err == nil:
			summary.InsertedRegistrations++
			s.metrics.RegistrationsTotal.WithLabelValues(string(model.SourceImport)).Inc()
			s.metrics.ReconcileRows.WithLabelValues("inserted").Inc()
		case errors.Is(err, model.ErrAlreadyRegistered):
			summary.Duplicates++
			summary.DuplicateIdentities = append(summary.DuplicateIdentities, model.DuplicateIdentity{
				Row:   rowNum,
				Email: row.Email,
			})
			s.metrics.ReconcileRows.WithLabelValues("duplicate").Inc()
		case errors.Is(err, model.ErrCapacityExceeded):
			summary.RejectedCapacity++
			s.metrics.ReconcileRows.WithLabelValues("rejected_capacity").Inc()
		default:
			// Storage failure: committed rows stay intact, report how far we got.
			return summary, fmt.Errorf("commit row %d: %w", rowNum, err)
		}
	}

	s.metrics.ReconcileRuns.Inc()
	s.log.Info().
		Str("event_id", eventID).
		Int("rows", len(rows)).
		Int("inserted_participants", summary.InsertedParticipants).
		Int("inserted_registrations", summary.InsertedRegistrations).
		Int("duplicates", summary.Duplicates).
		Int("rejected_capacity", summary.RejectedCapacity).
		Int("skipped", len(summary.Skipped)).
		Msg("reconciliation run complete")
	return summary, nil
}
