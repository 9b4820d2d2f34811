// Package memory provides an in-memory storage backend. It keeps local
// development and the service test suite free of external dependencies while
// honoring the same invariants as the Postgres backend: unique participant
// identity keys, unique (event, participant) pairs, and an atomic capacity
// check-and-increment.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

type pairKey struct {
	eventID       string
	participantID string
}

// Store holds all state behind a single mutex so every operation is atomic.
// The entity-specific views returned by Events, Participants, Registrations
// and Ledger share this state.
type Store struct {
	mu            sync.RWMutex
	events        map[string]model.Event
	participants  map[string]model.Participant
	byEmail       map[string]string
	registrations map[string]model.Registration
	byPair        map[pairKey]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		events:        make(map[string]model.Event),
		participants:  make(map[string]model.Participant),
		byEmail:       make(map[string]string),
		registrations: make(map[string]model.Registration),
		byPair:        make(map[pairKey]string),
	}
}

// Events returns the event view of the store.
func (s *Store) Events() *Events { return &Events{s: s} }

// Participants returns the participant view of the store.
func (s *Store) Participants() *Participants { return &Participants{s: s} }

// Registrations returns the registration view of the store.
func (s *Store) Registrations() *Registrations { return &Registrations{s: s} }

// Ledger returns the capacity ledger view of the store.
func (s *Store) Ledger() *Ledger { return &Ledger{s: s} }

// ── Events ────────────────────────────────────────────────────────────────

type Events struct {
	s *Store
}

func (e *Events) Create(_ context.Context, event model.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.s.events[event.ID] = event
	return nil
}

func (e *Events) GetByID(_ context.Context, id string) (model.Event, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	event, ok := e.s.events[id]
	if !ok {
		return model.Event{}, model.ErrNotFound
	}
	return event, nil
}

func (e *Events) List(_ context.Context) ([]model.Event, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	events := make([]model.Event, 0, len(e.s.events))
	for _, event := range e.s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (e *Events) Delete(_ context.Context, id string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if _, ok := e.s.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(e.s.events, id)
	return nil
}

// ── Capacity ledger ───────────────────────────────────────────────────────

type Ledger struct {
	s *Store
}

// TryAdmit atomically checks committed < capacity and increments. A capacity
// of zero (or less) means the event is closed.
func (l *Ledger) TryAdmit(_ context.Context, eventID string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	event, ok := l.s.events[eventID]
	if !ok {
		return model.ErrNotFound
	}
	if event.Registered >= event.Capacity {
		return model.ErrCapacityExceeded
	}
	event.Registered++
	l.s.events[eventID] = event
	return nil
}

// Release gives one admitted slot back, flooring at zero.
func (l *Ledger) Release(_ context.Context, eventID string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	event, ok := l.s.events[eventID]
	if !ok {
		return model.ErrNotFound
	}
	if event.Registered > 0 {
		event.Registered--
	}
	l.s.events[eventID] = event
	return nil
}

// ── Participants ──────────────────────────────────────────────────────────

type Participants struct {
	s *Store
}

// Resolve finds the participant owning the contact's canonical email or
// creates one. Existing records get a last-write-wins update of the non-empty
// profile fields; the email itself is never rewritten.
func (p *Participants) Resolve(_ context.Context, contact model.Contact) (model.Participant, bool, error) {
	contact = contact.Normalized()

	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if id, ok := p.s.byEmail[contact.Email]; ok {
		existing := p.s.participants[id]
		applyProfile(&existing, contact)
		p.s.participants[id] = existing
		return existing, false, nil
	}

	created := model.Participant{
		ID:         uuid.New().String(),
		Email:      contact.Email,
		RegNo:      contact.RegNo,
		Name:       contact.Name,
		Phone:      contact.Phone,
		Department: contact.Department,
		Year:       contact.Year,
		CreatedAt:  time.Now().UTC(),
	}
	p.s.participants[created.ID] = created
	p.s.byEmail[created.Email] = created.ID
	return created, true, nil
}

func applyProfile(p *model.Participant, contact model.Contact) {
	if contact.RegNo != "" {
		p.RegNo = contact.RegNo
	}
	if contact.Name != "" {
		p.Name = contact.Name
	}
	if contact.Phone != "" {
		p.Phone = contact.Phone
	}
	if contact.Department != "" {
		p.Department = contact.Department
	}
	if contact.Year != "" {
		p.Year = contact.Year
	}
}

func (p *Participants) GetByID(_ context.Context, id string) (model.Participant, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	participant, ok := p.s.participants[id]
	if !ok {
		return model.Participant{}, model.ErrNotFound
	}
	return participant, nil
}

func (p *Participants) List(_ context.Context) ([]model.Participant, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	participants := make([]model.Participant, 0, len(p.s.participants))
	for _, participant := range p.s.participants {
		participants = append(participants, participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].CreatedAt.Before(participants[j].CreatedAt)
	})
	return participants, nil
}

func (p *Participants) UpdateProfile(_ context.Context, id string, upd model.UpdateParticipantRequest) (model.Participant, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	participant, ok := p.s.participants[id]
	if !ok {
		return model.Participant{}, model.ErrNotFound
	}
	if upd.RegNo != nil {
		participant.RegNo = *upd.RegNo
	}
	if upd.Name != nil {
		participant.Name = *upd.Name
	}
	if upd.Phone != nil {
		participant.Phone = *upd.Phone
	}
	if upd.Department != nil {
		participant.Department = *upd.Department
	}
	if upd.Year != nil {
		participant.Year = *upd.Year
	}
	p.s.participants[id] = participant
	return participant, nil
}

func (p *Participants) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	participant, ok := p.s.participants[id]
	if !ok {
		return model.ErrNotFound
	}
	delete(p.s.participants, id)
	delete(p.s.byEmail, participant.Email)
	return nil
}

// ── Registrations ─────────────────────────────────────────────────────────

type Registrations struct {
	s *Store
}

// Create enforces the (event, participant) uniqueness invariant.
func (r *Registrations) Create(_ context.Context, reg model.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{reg.EventID, reg.ParticipantID}
	if _, ok := r.s.byPair[key]; ok {
		return model.ErrAlreadyRegistered
	}
	r.s.registrations[reg.ID] = reg
	r.s.byPair[key] = reg.ID
	return nil
}

func (r *Registrations) Exists(_ context.Context, eventID, participantID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.byPair[pairKey{eventID, participantID}]
	return ok, nil
}

func (r *Registrations) Delete(_ context.Context, id string) (model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return model.Registration{}, model.ErrNotFound
	}
	delete(r.s.registrations, id)
	delete(r.s.byPair, pairKey{reg.EventID, reg.ParticipantID})
	return reg, nil
}

func (r *Registrations) DeleteByEvent(_ context.Context, eventID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	removed := 0
	for id, reg := range r.s.registrations {
		if reg.EventID != eventID {
			continue
		}
		delete(r.s.registrations, id)
		delete(r.s.byPair, pairKey{reg.EventID, reg.ParticipantID})
		removed++
	}
	return removed, nil
}

func (r *Registrations) DeleteByParticipant(_ context.Context, participantID string) ([]model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed []model.Registration
	for id, reg := range r.s.registrations {
		if reg.ParticipantID != participantID {
			continue
		}
		delete(r.s.registrations, id)
		delete(r.s.byPair, pairKey{reg.EventID, reg.ParticipantID})
		removed = append(removed, reg)
	}
	return removed, nil
}

func (r *Registrations) ListByEvent(_ context.Context, eventID string) ([]model.RosterEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var entries []model.RosterEntry
	for _, reg := range r.s.registrations {
		if reg.EventID != eventID {
			continue
		}
		participant := r.s.participants[reg.ParticipantID]
		entries = append(entries, model.RosterEntry{
			RegistrationID: reg.ID,
			ParticipantID:  participant.ID,
			Email:          participant.Email,
			RegNo:          participant.RegNo,
			Name:           participant.Name,
			Phone:          participant.Phone,
			Department:     participant.Department,
			Year:           participant.Year,
			Source:         reg.Source,
			RegisteredAt:   reg.RegisteredAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RegisteredAt.Before(entries[j].RegisteredAt)
	})
	return entries, nil
}

func (r *Registrations) ListByParticipant(_ context.Context, participantID string) ([]model.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var regs []model.Registration
	for _, reg := range r.s.registrations {
		if reg.ParticipantID == participantID {
			regs = append(regs, reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].RegisteredAt.Before(regs[j].RegisteredAt)
	})
	return regs, nil
}
