package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/state"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
)

// failingSink simulates an unavailable persistence backend.
type failingSink struct {
	saves int
}

func (f *failingSink) LoadLog(ctx context.Context) ([]domain.Event, error) {
	return nil, errors.New("backend down")
}

func (f *failingSink) SaveLog(ctx context.Context, log []domain.Event) error {
	f.saves++
	return errors.New("backend down")
}

func TestStore_AppendDerivesState(t *testing.T) {
	store := state.New()
	ctx := context.Background()

	store.Append(ctx, domain.Event{Intent: domain.EventJournalSet, Payload: map[string]any{"key": "note", "value": "hi"}})

	snap := store.State()
	assert.Equal(t, "hi", snap.Journal["note"])
	assert.Equal(t, 1, snap.EventCount)

	log := store.Log()
	require.Len(t, log, 1)
	assert.NotEmpty(t, log[0].ID, "append stamps an event id")
	assert.False(t, log[0].At.IsZero(), "append stamps a timestamp")
}

func TestStore_NotifiesInRegistrationOrder(t *testing.T) {
	store := state.New()
	var order []string

	store.Subscribe(func(*domain.DerivedState) { order = append(order, "first") })
	store.Subscribe(func(*domain.DerivedState) { order = append(order, "second") })
	store.Subscribe(func(*domain.DerivedState) { order = append(order, "third") })

	store.Append(context.Background(), domain.Event{Intent: domain.EventInteraction})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestStore_SubscriberPanicDoesNotStopOthers(t *testing.T) {
	store := state.New()
	reached := false

	store.Subscribe(func(*domain.DerivedState) { panic("boom") })
	store.Subscribe(func(*domain.DerivedState) { reached = true })

	store.Append(context.Background(), domain.Event{Intent: domain.EventInteraction})

	assert.True(t, reached, "second subscriber must still run")
}

func TestStore_Unsubscribe(t *testing.T) {
	store := state.New()
	calls := 0

	unsubscribe := store.Subscribe(func(*domain.DerivedState) { calls++ })

	store.Append(context.Background(), domain.Event{Intent: domain.EventInteraction})
	unsubscribe()
	store.Append(context.Background(), domain.Event{Intent: domain.EventInteraction})

	assert.Equal(t, 1, calls)
}

func TestStore_ReentrantAppendQueues(t *testing.T) {
	store := state.New()
	ctx := context.Background()

	seen := []int{}
	store.Subscribe(func(s *domain.DerivedState) {
		seen = append(seen, s.EventCount)
		// Re-enter once from inside the notification.
		if s.EventCount == 1 {
			store.Append(ctx, domain.Event{Intent: domain.EventInteraction})
		}
	})

	store.Append(ctx, domain.Event{Intent: domain.EventNavigate, Payload: map[string]any{"to": "home"}})

	// The re-entrant append ran after the first fold completed, as its own
	// notification round.
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 2, store.State().EventCount)
}

func TestStore_LoadFailureDegradesToEmpty(t *testing.T) {
	store := state.New(state.WithSink(&failingSink{}))
	store.Load(context.Background())

	assert.Equal(t, 0, store.State().EventCount)
}

func TestStore_SaveFailureIsSwallowed(t *testing.T) {
	sink := &failingSink{}
	store := state.New(state.WithSink(sink))

	// Must not panic or surface the error.
	store.Append(context.Background(), domain.Event{Intent: domain.EventInteraction})

	assert.Equal(t, 1, sink.saves)
	assert.Equal(t, 1, store.State().EventCount)
}

func TestStore_PersistsThroughSink(t *testing.T) {
	sink := memory.NewSink()
	store := state.New(state.WithSink(sink))
	ctx := context.Background()

	store.Append(ctx, domain.Event{Intent: domain.EventJournalSet, Payload: map[string]any{"key": "a", "value": "1"}})
	store.Append(ctx, domain.Event{Intent: domain.EventJournalSet, Payload: map[string]any{"key": "b", "value": "2"}})

	// A fresh store over the same sink rebuilds identical state.
	rebuilt := state.New(state.WithSink(sink))
	rebuilt.Load(ctx)

	assert.Equal(t, store.State(), rebuilt.State())
}

func TestStore_StateReturnsCopy(t *testing.T) {
	store := state.New()
	store.Append(context.Background(), domain.Event{Intent: domain.EventValuesSet, Payload: map[string]any{"key": "k", "value": "v"}})

	snap := store.State()
	snap.Values["k"] = "tampered"

	assert.Equal(t, "v", store.State().Values["k"])
}
