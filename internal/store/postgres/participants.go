package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// Participants persists participant records keyed by canonical email.
type Participants struct {
	pool *pgxpool.Pool
}

const participantColumns = `id, email, reg_no, name, phone, department, year, created_at`

func scanParticipant(row pgx.Row) (model.Participant, error) {
	var p model.Participant
	err := row.Scan(&p.ID, &p.Email, &p.RegNo, &p.Name, &p.Phone, &p.Department, &p.Year, &p.CreatedAt)
	return p, err
}

// Resolve finds or creates the participant for the contact's canonical email.
// The unique index on email is the arbiter: when two callers race on the same
// key, ON CONFLICT DO NOTHING makes one of them lose the insert and fall
// through to the update path. Non-empty profile fields overwrite the stored
// ones (last write wins); empty fields leave existing data alone.
func (r *Participants) Resolve(ctx context.Context, contact model.Contact) (model.Participant, bool, error) {
	contact = contact.Normalized()

	inserted, err := scanParticipant(r.pool.QueryRow(ctx,
		`INSERT INTO participants (id, email, reg_no, name, phone, department, year, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING `+participantColumns,
		uuid.New().String(), contact.Email, contact.RegNo, contact.Name,
		contact.Phone, contact.Department, contact.Year, time.Now().UTC(),
	))
	if err == nil {
		return inserted, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Participant{}, false, fmt.Errorf("insert participant: %w", err)
	}

	// Conflict: the email already owns a record. Apply the profile update.
	updated, err := scanParticipant(r.pool.QueryRow(ctx,
		`UPDATE participants SET
			reg_no     = COALESCE(NULLIF($2, ''), reg_no),
			name       = COALESCE(NULLIF($3, ''), name),
			phone      = COALESCE(NULLIF($4, ''), phone),
			department = COALESCE(NULLIF($5, ''), department),
			year       = COALESCE(NULLIF($6, ''), year)
		 WHERE email = $1
		 RETURNING `+participantColumns,
		contact.Email, contact.RegNo, contact.Name, contact.Phone, contact.Department, contact.Year,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The record was deleted between insert and update; very unlikely,
			// surface it as a transient resolution failure.
			return model.Participant{}, false, fmt.Errorf("resolve participant %s: %w", contact.Email, model.ErrNotFound)
		}
		return model.Participant{}, false, fmt.Errorf("update participant: %w", err)
	}
	return updated, false, nil
}

func (r *Participants) GetByID(ctx context.Context, id string) (model.Participant, error) {
	if !validID(id) {
		return model.Participant{}, model.ErrNotFound
	}
	p, err := scanParticipant(r.pool.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Participant{}, model.ErrNotFound
		}
		return model.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (r *Participants) List(ctx context.Context) ([]model.Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+participantColumns+` FROM participants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *Participants) UpdateProfile(ctx context.Context, id string, upd model.UpdateParticipantRequest) (model.Participant, error) {
	if !validID(id) {
		return model.Participant{}, model.ErrNotFound
	}
	p, err := scanParticipant(r.pool.QueryRow(ctx,
		`UPDATE participants SET
			reg_no     = COALESCE($2, reg_no),
			name       = COALESCE($3, name),
			phone      = COALESCE($4, phone),
			department = COALESCE($5, department),
			year       = COALESCE($6, year)
		 WHERE id = $1
		 RETURNING `+participantColumns,
		id, upd.RegNo, upd.Name, upd.Phone, upd.Department, upd.Year,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Participant{}, model.ErrNotFound
		}
		return model.Participant{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func (r *Participants) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return model.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
