package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

// Events persists events.
type Events struct {
	pool *pgxpool.Pool
}

const eventColumns = `id, title, description, category, venue, date, start_time, end_time,
	max_participants, registrations_count, created_at`

func scanEvent(row pgx.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Venue,
		&e.Date, &e.StartTime, &e.EndTime, &e.Capacity, &e.Registered, &e.CreatedAt)
	return e, err
}

func (r *Events) Create(ctx context.Context, e model.Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, title, description, category, venue, date, start_time, end_time,
			max_participants, registrations_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Title, e.Description, e.Category, e.Venue, e.Date, e.StartTime, e.EndTime,
		e.Capacity, e.Registered, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *Events) GetByID(ctx context.Context, id string) (model.Event, error) {
	if !validID(id) {
		return model.Event{}, model.ErrNotFound
	}
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, model.ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *Events) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Events) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return model.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Ledger implements capacity admission on the events table. The counter and
// its bound live on the same row, so a conditional UPDATE is the whole
// check-and-increment: concurrent callers serialize on the row lock and the
// WHERE clause decides who gets the last slot.
type Ledger struct {
	pool *pgxpool.Pool
}

func (l *Ledger) TryAdmit(ctx context.Context, eventID string) error {
	if !validID(eventID) {
		return model.ErrNotFound
	}
	tag, err := l.pool.Exec(ctx,
		`UPDATE events
		 SET registrations_count = registrations_count + 1
		 WHERE id = $1 AND registrations_count < max_participants`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("admit: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// No row updated: either the event is full or it does not exist.
	var exists bool
	if err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("admit existence check: %w", err)
	}
	if !exists {
		return model.ErrNotFound
	}
	return model.ErrCapacityExceeded
}

func (l *Ledger) Release(ctx context.Context, eventID string) error {
	if !validID(eventID) {
		return model.ErrNotFound
	}
	tag, err := l.pool.Exec(ctx,
		`UPDATE events
		 SET registrations_count = GREATEST(registrations_count - 1, 0)
		 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
