package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// ActionHandler executes a domain action. Handlers receive the action and a
// snapshot of the derived state; they may append further events through
// whatever store handle they closed over. A returned error is logged and
// swallowed at the router boundary, and panics are recovered there too.
type ActionHandler func(ctx context.Context, action domain.DomainAction, state *domain.DerivedState) error

// HandlerLookup is the router's view of the handler registry.
type HandlerLookup interface {
	// Lookup returns the handler registered under the exact action name.
	Lookup(name string) (ActionHandler, bool)
}
