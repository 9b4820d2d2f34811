// Package model defines the core domain types for the college event
// registration system.
package model

import (
	"strings"
	"time"
)

// Source identifies which entry point produced a registration.
type Source string

const (
	SourceSelf      Source = "self"
	SourceOrganizer Source = "organizer"
	SourceImport    Source = "import"
)

// Valid reports whether s is one of the known entry points.
func (s Source) Valid() bool {
	switch s {
	case SourceSelf, SourceOrganizer, SourceImport:
		return true
	}
	return false
}

// Event represents a college event with a fixed participant capacity.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Venue       string    `json:"venue,omitempty"`
	Date        string    `json:"date,omitempty"`
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	Capacity    int       `json:"max_participants"`
	Registered  int       `json:"registrations_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Remaining returns the number of open slots.
func (e *Event) Remaining() int {
	return e.Capacity - e.Registered
}

// IsFull returns true when no slots remain.
func (e *Event) IsFull() bool {
	return e.Registered >= e.Capacity
}

// Participant is a deduplicated person identified by their canonical email.
// The email is the identity key and is immutable once assigned; the remaining
// profile fields are enrichment and follow last-write-wins.
type Participant struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	RegNo      string    `json:"reg_no,omitempty"`
	Name       string    `json:"name,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	Year       string    `json:"year,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Registration ties a participant to an event. The (event, participant) pair
// is unique across the system.
type Registration struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	Source        Source    `json:"source"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// Contact carries the raw identity fields of a registration attempt before
// resolution. Email is required; everything else is optional enrichment.
type Contact struct {
	Email      string `json:"email" validate:"required,email"`
	RegNo      string `json:"reg_no,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
}

// Normalized returns a copy of the contact with the canonical identity key
// applied: email trimmed and lower-cased, other fields trimmed.
func (c Contact) Normalized() Contact {
	c.Email = CanonicalEmail(c.Email)
	c.RegNo = strings.TrimSpace(c.RegNo)
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Department = strings.TrimSpace(c.Department)
	c.Year = strings.TrimSpace(c.Year)
	return c
}

// CanonicalEmail normalizes an email address into the identity key used to
// deduplicate participants.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RosterEntry is a registration joined with its participant profile, as shown
// to organizers.
type RosterEntry struct {
	RegistrationID string    `json:"registration_id"`
	ParticipantID  string    `json:"participant_id"`
	Email          string    `json:"email"`
	RegNo          string    `json:"reg_no,omitempty"`
	Name           string    `json:"name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Department     string    `json:"department,omitempty"`
	Year           string    `json:"year,omitempty"`
	Source         Source    `json:"source"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// RegisteredEvent is an event joined with the participant's registration,
// used for the per-participant "my events" view.
type RegisteredEvent struct {
	Registration Registration `json:"registration"`
	Event        Event        `json:"event"`
}

// CapacityStatus reports an event's configured capacity and committed count.
type CapacityStatus struct {
	EventID    string `json:"event_id"`
	Capacity   int    `json:"capacity"`
	Registered int    `json:"registered"`
}

// DuplicateIdentity points at a reconciliation row that resolved to an
// already-registered participant.
type DuplicateIdentity struct {
	Row   int    `json:"row"`
	Email string `json:"email"`
}

// SkippedRow points at a reconciliation row that could not be processed.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ReconcileSummary is the outcome of one reconciliation run. The run itself is
// ephemeral; only this summary is returned to the caller.
type ReconcileSummary struct {
	InsertedParticipants  int                 `json:"inserted_participants"`
	InsertedRegistrations int                 `json:"inserted_registrations"`
	Duplicates            int                 `json:"duplicates"`
	RejectedCapacity      int                 `json:"rejected_capacity"`
	Skipped               []SkippedRow        `json:"skipped"`
	DuplicateIdentities   []DuplicateIdentity `json:"duplicate_identities"`
}
