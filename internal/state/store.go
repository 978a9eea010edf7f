// Package state implements the append-only event store: the single source of
// truth the rest of the runtime derives from.
package state

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/espalier/internal/projection"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Subscriber is notified with a fresh snapshot after every append.
// Subscribers must not retain and mutate the snapshot maps.
type Subscriber func(*domain.DerivedState)

type subscription struct {
	id int
	fn Subscriber
}

// Store owns the event log and the derived snapshot. Appends are serialized:
// an Append issued from inside a notification callback is queued behind the
// active fold instead of interleaving with it.
type Store struct {
	mu        sync.Mutex
	log       []domain.Event
	state     *domain.DerivedState
	subs      []subscription
	nextSubID int
	appending bool
	queue     []domain.Event

	sink   ports.EventSink
	logger *slog.Logger
}

// Option configures the store.
type Option func(*Store)

// WithSink attaches a persistence sink. Sink failures are swallowed: a
// failing load degrades to an empty log, a failing save is dropped after a
// diagnostic.
func WithSink(sink ports.EventSink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		state:  projection.Fold(nil),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the log with whatever the sink holds and re-derives state.
// Persistence unavailability is not an error: the store starts empty.
func (s *Store) Load(ctx context.Context) {
	if s.sink == nil {
		return
	}

	log, err := s.sink.LoadLog(ctx)
	if err != nil {
		s.logger.Warn("failed to load event log, starting empty", "err", err)
		log = nil
	}

	s.mu.Lock()
	s.log = log
	s.state = projection.Fold(log)
	s.mu.Unlock()
}

// Append adds an event to the log, re-derives the snapshot, notifies
// subscribers in registration order and persists the log best-effort.
// Re-entrant calls (from a subscriber or handler running inside the current
// turn) are queued and applied after the current fold completes.
func (s *Store) Append(ctx context.Context, ev domain.Event) {
	s.mu.Lock()
	if s.appending {
		s.queue = append(s.queue, ev)
		s.mu.Unlock()
		return
	}
	s.appending = true
	s.mu.Unlock()

	pending := []domain.Event{ev}
	for {
		for len(pending) > 0 {
			next := pending[0]
			pending = pending[1:]
			s.apply(ctx, next)
		}

		// Drain anything queued during notification; stop only when the
		// queue is empty at the moment we give up the appending flag.
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.appending = false
			s.mu.Unlock()
			return
		}
		pending = s.queue
		s.queue = nil
		s.mu.Unlock()
	}
}

func (s *Store) apply(ctx context.Context, ev domain.Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	s.mu.Lock()
	s.log = append(s.log, ev)
	s.state = projection.Fold(s.log)
	snapshot := s.state.Clone()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		s.notify(sub, snapshot)
	}

	s.persist(ctx)
}

// notify isolates subscriber panics so one failing subscriber cannot starve
// the rest.
func (s *Store) notify(sub subscription, snapshot *domain.DerivedState) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked", "subscriber", sub.id, "panic", r)
		}
	}()
	sub.fn(snapshot)
}

func (s *Store) persist(ctx context.Context) {
	if s.sink == nil {
		return
	}

	s.mu.Lock()
	log := domain.CloneLog(s.log)
	s.mu.Unlock()

	if err := s.sink.SaveLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist event log", "err", err, "events", len(log))
	}
}

// State returns a copy of the current snapshot.
func (s *Store) State() *domain.DerivedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Log returns a copy of the event log.
func (s *Store) Log() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneLog(s.log)
}

// Subscribe registers fn and returns an unsubscribe function. Notification
// order follows registration order.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
