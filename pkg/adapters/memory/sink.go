// Package memory provides an in-memory event sink, used as the default when
// no durable backend is configured and as the baseline for tests.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Sink implements ports.EventSink in memory. Safe for concurrent use.
type Sink struct {
	mu  sync.RWMutex
	log []domain.Event
}

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{}
}

// LoadLog returns a copy of the stored log.
func (s *Sink) LoadLog(ctx context.Context) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLog(s.log), nil
}

// SaveLog replaces the stored log with a copy of the given one.
func (s *Sink) SaveLog(ctx context.Context, log []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = domain.CloneLog(log)
	return nil
}
