package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PragadheeshPandian123/college-event-registration/internal/metrics"
	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
	"github.com/PragadheeshPandian123/college-event-registration/internal/store/memory"
)

type testEnv struct {
	store        *memory.Store
	events       *EventService
	registration *RegistrationService
	participants *ParticipantService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	m := metrics.New(prometheus.NewRegistry())
	log := zerolog.Nop()
	return &testEnv{
		store:  store,
		events: NewEventService(store.Events(), store.Registrations(), log),
		registration: NewRegistrationService(
			store.Events(), store.Participants(), store.Registrations(), store.Ledger(), m, log),
		participants: NewParticipantService(
			store.Events(), store.Participants(), store.Registrations(), store.Ledger(), m, log),
	}
}

func (env *testEnv) mustCreateEvent(t *testing.T, capacity int) model.Event {
	t.Helper()
	event, err := env.events.Create(context.Background(), model.CreateEventRequest{
		Title:    "Tech Symposium",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return event
}

func contactN(n int) model.Contact {
	return model.Contact{
		Email: fmt.Sprintf("student%d@college.edu", n),
		Name:  fmt.Sprintf("Student %d", n),
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("records registration and commits a slot", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 10)

		reg, err := env.registration.Register(ctx, event.ID, model.Contact{
			Email: " Jane@College.EDU ",
			Name:  "Jane",
		}, model.SourceSelf)
		require.NoError(t, err)
		assert.NotEmpty(t, reg.ID)
		assert.Equal(t, event.ID, reg.EventID)
		assert.Equal(t, model.SourceSelf, reg.Source)

		status, err := env.events.CapacityStatus(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, status.Registered)

		// identity was canonicalized before resolution
		participants, err := env.participants.List(ctx)
		require.NoError(t, err)
		require.Len(t, participants, 1)
		assert.Equal(t, "jane@college.edu", participants[0].Email)
	})

	t.Run("empty source defaults to self", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 1)

		reg, err := env.registration.Register(ctx, event.ID, contactN(1), "")
		require.NoError(t, err)
		assert.Equal(t, model.SourceSelf, reg.Source)
	})

	t.Run("rejects missing or malformed email with no side effects", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 10)

		for _, email := range []string{"", "   ", "not-an-email", "missing@tld"} {
			_, err := env.registration.Register(ctx, event.ID, model.Contact{Email: email}, model.SourceSelf)
			assert.ErrorIs(t, err, model.ErrValidation, "email %q", email)
		}

		status, err := env.events.CapacityStatus(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, status.Registered)

		participants, err := env.participants.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, participants)
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 10)

		_, err := env.registration.Register(ctx, event.ID, contactN(1), model.Source("fax"))
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("unknown event", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.registration.Register(ctx, uuid.New().String(), contactN(1), model.SourceSelf)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("duplicate pair is rejected without touching capacity", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 10)

		_, err := env.registration.Register(ctx, event.ID, contactN(1), model.SourceSelf)
		require.NoError(t, err)

		_, err = env.registration.Register(ctx, event.ID, contactN(1), model.SourceOrganizer)
		assert.ErrorIs(t, err, model.ErrAlreadyRegistered)

		status, err := env.events.CapacityStatus(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, status.Registered)
	})

	t.Run("duplicate wins over capacity at a full event", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 1)

		_, err := env.registration.Register(ctx, event.ID, contactN(1), model.SourceSelf)
		require.NoError(t, err)

		// event is now full; the same participant must see AlreadyRegistered,
		// not CapacityExceeded
		_, err = env.registration.Register(ctx, event.ID, contactN(1), model.SourceSelf)
		assert.ErrorIs(t, err, model.ErrAlreadyRegistered)
	})

	t.Run("zero capacity event is closed", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 0)

		_, err := env.registration.Register(ctx, event.ID, contactN(1), model.SourceSelf)
		assert.ErrorIs(t, err, model.ErrCapacityExceeded)
	})

	t.Run("full event rejects a new participant", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 1)

		_, err := env.registration.Register(ctx, event.ID, contactN(1), model.SourceSelf)
		require.NoError(t, err)

		_, err = env.registration.Register(ctx, event.ID, contactN(2), model.SourceSelf)
		assert.ErrorIs(t, err, model.ErrCapacityExceeded)
	})
}

func TestRegisterConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("N identical attempts produce exactly one registration", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 100)

		const attempts = 50
		var wg sync.WaitGroup
		var succeeded, duplicates atomic.Int32

		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.registration.Register(ctx, event.ID, contactN(7), model.SourceSelf)
				if err == nil {
					succeeded.Add(1)
					return
				}
				assert.ErrorIs(t, err, model.ErrAlreadyRegistered)
				duplicates.Add(1)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(attempts-1), duplicates.Load())

		status, err := env.events.CapacityStatus(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, status.Registered)

		participants, err := env.participants.List(ctx)
		require.NoError(t, err)
		assert.Len(t, participants, 1)
	})

	t.Run("two contenders for the last slot", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 1)

		var wg sync.WaitGroup
		var succeeded, capacityRejected atomic.Int32
		for i := 1; i <= 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := env.registration.Register(ctx, event.ID, contactN(i), model.SourceSelf)
				switch {
				case err == nil:
					succeeded.Add(1)
				default:
					assert.ErrorIs(t, err, model.ErrCapacityExceeded)
					capacityRejected.Add(1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(1), capacityRejected.Load())
	})

	t.Run("committed never exceeds capacity under mixed load", func(t *testing.T) {
		env := newTestEnv(t)
		const capacity = 10
		event := env.mustCreateEvent(t, capacity)

		var wg sync.WaitGroup
		regIDs := make(chan string, 64)
		for i := range 40 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if reg, err := env.registration.Register(ctx, event.ID, contactN(i), model.SourceSelf); err == nil {
					regIDs <- reg.ID
				}
			}(i)
		}
		// unregister a few concurrently with registrations
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				select {
				case id := <-regIDs:
					_ = env.registration.Unregister(ctx, id)
				case <-time.After(100 * time.Millisecond):
				}
			}()
		}
		wg.Wait()

		status, err := env.events.CapacityStatus(ctx, event.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, status.Registered, capacity)
		assert.GreaterOrEqual(t, status.Registered, 0)

		roster, err := env.registration.Roster(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, status.Registered, len(roster))
	})
}

// conflictingRegistrations simulates the commit race: the duplicate pre-check
// passes but the store reports a pair conflict on Create.
type conflictingRegistrations struct {
	RegistrationStore
	conflicts atomic.Int32
}

func (c *conflictingRegistrations) Create(ctx context.Context, reg model.Registration) error {
	c.conflicts.Add(1)
	return model.ErrAlreadyRegistered
}

func TestRegisterCompensatesLostCommitRace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	m := metrics.New(prometheus.NewRegistry())
	events := NewEventService(store.Events(), store.Registrations(), zerolog.Nop())

	conflicting := &conflictingRegistrations{RegistrationStore: store.Registrations()}
	svc := NewRegistrationService(store.Events(), store.Participants(), conflicting, store.Ledger(), m, zerolog.Nop())

	event, err := events.Create(ctx, model.CreateEventRequest{Title: "Hack Night", Capacity: 5})
	require.NoError(t, err)

	_, err = svc.Register(ctx, event.ID, contactN(1), model.SourceSelf)
	assert.ErrorIs(t, err, model.ErrAlreadyRegistered)
	assert.Equal(t, int32(1), conflicting.conflicts.Load())

	// the admitted slot was released
	status, err := events.CapacityStatus(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Registered)
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()

	t.Run("releases capacity for a new participant", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.mustCreateEvent(t, 1)

		reg, err := env.registration.Register(ctx, event.ID, contactN(1), model.SourceSelf)
		require.NoError(t, err)

		_, err = env.registration.Register(ctx, event.ID, contactN(2), model.SourceSelf)
		require.ErrorIs(t, err, model.ErrCapacityExceeded)

		require.NoError(t, env.registration.Unregister(ctx, reg.ID))

		_, err = env.registration.Register(ctx, event.ID, contactN(2), model.SourceSelf)
		assert.NoError(t, err)
	})

	t.Run("unknown registration", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.registration.Unregister(ctx, uuid.New().String())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestRoster(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	event := env.mustCreateEvent(t, 10)

	_, err := env.registration.Register(ctx, event.ID, model.Contact{
		Email:      "amy@college.edu",
		Name:       "Amy",
		Department: "CSE",
	}, model.SourceOrganizer)
	require.NoError(t, err)

	roster, err := env.registration.Roster(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "amy@college.edu", roster[0].Email)
	assert.Equal(t, "Amy", roster[0].Name)
	assert.Equal(t, "CSE", roster[0].Department)
	assert.Equal(t, model.SourceOrganizer, roster[0].Source)

	_, err = env.registration.Roster(ctx, uuid.New().String())
	assert.ErrorIs(t, err, model.ErrNotFound)
}
