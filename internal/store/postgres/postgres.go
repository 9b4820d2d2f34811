// Package postgres implements the storage interfaces on PostgreSQL using pgx
// directly (no ORM). Uniqueness invariants live in the schema: a unique index
// on participants(email) and on registrations(event_id, participant_id).
// Capacity admission is a single conditional UPDATE, so it is atomic without
// explicit locking.
package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the pgx pool behind the entity views.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store on top of an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Events returns the event view of the store.
func (s *Store) Events() *Events { return &Events{pool: s.pool} }

// Participants returns the participant view of the store.
func (s *Store) Participants() *Participants { return &Participants{pool: s.pool} }

// Registrations returns the registration view of the store.
func (s *Store) Registrations() *Registrations { return &Registrations{pool: s.pool} }

// Ledger returns the capacity ledger view of the store.
func (s *Store) Ledger() *Ledger { return &Ledger{pool: s.pool} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// validID reports whether id can reach the database as a UUID. IDs arrive
// from URL paths, so garbage must map to a not-found lookup rather than a
// driver encoding error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
