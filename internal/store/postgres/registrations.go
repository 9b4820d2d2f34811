package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// Registrations persists (event, participant) registrations. The unique index
// on (event_id, participant_id) is the source of truth for the pair
// invariant; Create surfaces its violation as model.ErrAlreadyRegistered.
type Registrations struct {
	pool *pgxpool.Pool
}

func (r *Registrations) Create(ctx context.Context, reg model.Registration) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO registrations (id, event_id, participant_id, source, registered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		reg.ID, reg.EventID, reg.ParticipantID, reg.Source, reg.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (r *Registrations) Exists(ctx context.Context, eventID, participantID string) (bool, error) {
	if !validID(eventID) || !validID(participantID) {
		return false, nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND participant_id = $2)`,
		eventID, participantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

func (r *Registrations) Delete(ctx context.Context, id string) (model.Registration, error) {
	if !validID(id) {
		return model.Registration{}, model.ErrNotFound
	}
	var reg model.Registration
	err := r.pool.QueryRow(ctx,
		`DELETE FROM registrations WHERE id = $1
		 RETURNING id, event_id, participant_id, source, registered_at`,
		id,
	).Scan(&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.Source, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, model.ErrNotFound
		}
		return model.Registration{}, fmt.Errorf("delete registration: %w", err)
	}
	return reg, nil
}

func (r *Registrations) DeleteByEvent(ctx context.Context, eventID string) (int, error) {
	if !validID(eventID) {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete registrations by event: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Registrations) DeleteByParticipant(ctx context.Context, participantID string) ([]model.Registration, error) {
	if !validID(participantID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`DELETE FROM registrations WHERE participant_id = $1
		 RETURNING id, event_id, participant_id, source, registered_at`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("delete registrations by participant: %w", err)
	}
	defer rows.Close()

	var removed []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.Source, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		removed = append(removed, reg)
	}
	return removed, rows.Err()
}

func (r *Registrations) ListByEvent(ctx context.Context, eventID string) ([]model.RosterEntry, error) {
	if !validID(eventID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, p.id, p.email, p.reg_no, p.name, p.phone, p.department, p.year,
			r.source, r.registered_at
		 FROM registrations r
		 JOIN participants p ON p.id = r.participant_id
		 WHERE r.event_id = $1
		 ORDER BY r.registered_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	var entries []model.RosterEntry
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(&e.RegistrationID, &e.ParticipantID, &e.Email, &e.RegNo, &e.Name,
			&e.Phone, &e.Department, &e.Year, &e.Source, &e.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Registrations) ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error) {
	if !validID(participantID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, participant_id, source, registered_at
		 FROM registrations
		 WHERE participant_id = $1
		 ORDER BY registered_at ASC`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.Source, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
