package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// EventSink persists the append-only event log in a durable key-value
// backend. The store treats it as best-effort: a failing LoadLog degrades to
// an empty log and a failing SaveLog is dropped after a diagnostic. Sink
// correctness must therefore never be load-bearing for engine correctness.
type EventSink interface {
	// LoadLog returns the persisted log in order, or an empty log when
	// nothing was persisted yet.
	LoadLog(ctx context.Context) ([]domain.Event, error)

	// SaveLog replaces the persisted log wholesale.
	SaveLog(ctx context.Context, log []domain.Event) error
}
