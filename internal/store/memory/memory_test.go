package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PragadheeshPandian123/college-event-registration/internal/model"
)

func seedEvent(t *testing.T, s *Store, capacity int) model.Event {
	t.Helper()
	event := model.Event{
		ID:        uuid.New().String(),
		Title:     "Workshop",
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Events().Create(context.Background(), event))
	return event
}

func TestLedgerTryAdmitConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()
	const capacity = 25
	event := seedEvent(t, s, capacity)

	var wg sync.WaitGroup
	var admitted, rejected atomic.Int32
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.Ledger().TryAdmit(ctx, event.ID); err {
			case nil:
				admitted.Add(1)
			case model.ErrCapacityExceeded:
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(capacity), admitted.Load())
	assert.Equal(t, int32(100-capacity), rejected.Load())

	got, err := s.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, got.Registered)
	assert.True(t, got.IsFull())
}

func TestLedgerRelease(t *testing.T) {
	ctx := context.Background()
	s := New()
	event := seedEvent(t, s, 2)

	require.NoError(t, s.Ledger().TryAdmit(ctx, event.ID))
	require.NoError(t, s.Ledger().Release(ctx, event.ID))

	// release floors at zero rather than going negative
	require.NoError(t, s.Ledger().Release(ctx, event.ID))
	got, err := s.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Registered)

	assert.ErrorIs(t, s.Ledger().TryAdmit(ctx, uuid.New().String()), model.ErrNotFound)
	assert.ErrorIs(t, s.Ledger().Release(ctx, uuid.New().String()), model.ErrNotFound)
}

func TestResolveConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	var created atomic.Int32
	ids := make(chan string, 50)
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, isNew, err := s.Participants().Resolve(ctx, model.Contact{
				Email: "shared@college.edu",
				Name:  fmt.Sprintf("Writer %d", i),
			})
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			if isNew {
				created.Add(1)
			}
			ids <- p.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	assert.Equal(t, int32(1), created.Load())
	var first string
	for id := range ids {
		if first == "" {
			first = id
			continue
		}
		assert.Equal(t, first, id)
	}

	participants, err := s.Participants().List(ctx)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestResolveProfileMerge(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, isNew, err := s.Participants().Resolve(ctx, model.Contact{
		Email: "merge@college.edu",
		Name:  "Original",
		Phone: "111",
	})
	require.NoError(t, err)
	assert.True(t, isNew)

	p, isNew, err := s.Participants().Resolve(ctx, model.Contact{
		Email:      "MERGE@College.edu",
		Name:       "Updated",
		Department: "IT",
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "merge@college.edu", p.Email)
	assert.Equal(t, "Updated", p.Name)
	assert.Equal(t, "IT", p.Department)
	// empty fields in the later write leave existing values alone
	assert.Equal(t, "111", p.Phone)
}

func TestRegistrationsPairUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	event := seedEvent(t, s, 100)
	participant, _, err := s.Participants().Resolve(ctx, model.Contact{Email: "p@college.edu"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg := model.Registration{
				ID:            uuid.New().String(),
				EventID:       event.ID,
				ParticipantID: participant.ID,
				Source:        model.SourceSelf,
				RegisteredAt:  time.Now().UTC(),
			}
			switch err := s.Registrations().Create(ctx, reg); err {
			case nil:
				succeeded.Add(1)
			case model.ErrAlreadyRegistered:
				conflicted.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(19), conflicted.Load())

	exists, err := s.Registrations().Exists(ctx, event.ID, participant.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRegistrationsDeleteFreesPair(t *testing.T) {
	ctx := context.Background()
	s := New()
	event := seedEvent(t, s, 10)
	participant, _, err := s.Participants().Resolve(ctx, model.Contact{Email: "p@college.edu"})
	require.NoError(t, err)

	reg := model.Registration{
		ID:            uuid.New().String(),
		EventID:       event.ID,
		ParticipantID: participant.ID,
		Source:        model.SourceSelf,
		RegisteredAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Registrations().Create(ctx, reg))

	removed, err := s.Registrations().Delete(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, removed.ID)

	exists, err := s.Registrations().Exists(ctx, event.ID, participant.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// the pair is registrable again
	reg.ID = uuid.New().String()
	assert.NoError(t, s.Registrations().Create(ctx, reg))

	_, err = s.Registrations().Delete(ctx, uuid.New().String())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegistrationsCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	eventA := seedEvent(t, s, 10)
	eventB := seedEvent(t, s, 10)

	var participants []model.Participant
	for i := range 3 {
		p, _, err := s.Participants().Resolve(ctx, model.Contact{Email: fmt.Sprintf("p%d@college.edu", i)})
		require.NoError(t, err)
		participants = append(participants, p)
	}
	for _, p := range participants {
		for _, ev := range []model.Event{eventA, eventB} {
			require.NoError(t, s.Registrations().Create(ctx, model.Registration{
				ID:            uuid.New().String(),
				EventID:       ev.ID,
				ParticipantID: p.ID,
				Source:        model.SourceImport,
				RegisteredAt:  time.Now().UTC(),
			}))
		}
	}

	removed, err := s.Registrations().DeleteByEvent(ctx, eventA.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	roster, err := s.Registrations().ListByEvent(ctx, eventA.ID)
	require.NoError(t, err)
	assert.Empty(t, roster)

	regs, err := s.Registrations().DeleteByParticipant(ctx, participants[0].ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, eventB.ID, regs[0].EventID)

	remaining, err := s.Registrations().ListByEvent(ctx, eventB.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestListByEventJoinsProfiles(t *testing.T) {
	ctx := context.Background()
	s := New()
	event := seedEvent(t, s, 10)
	p, _, err := s.Participants().Resolve(ctx, model.Contact{
		Email:      "joined@college.edu",
		Name:       "Joined",
		Department: "MECH",
	})
	require.NoError(t, err)
	require.NoError(t, s.Registrations().Create(ctx, model.Registration{
		ID:            uuid.New().String(),
		EventID:       event.ID,
		ParticipantID: p.ID,
		Source:        model.SourceOrganizer,
		RegisteredAt:  time.Now().UTC(),
	}))

	roster, err := s.Registrations().ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "joined@college.edu", roster[0].Email)
	assert.Equal(t, "Joined", roster[0].Name)
	assert.Equal(t, "MECH", roster[0].Department)
	assert.Equal(t, model.SourceOrganizer, roster[0].Source)
}
