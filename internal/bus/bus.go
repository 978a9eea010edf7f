// Package bus routes UI-emitted intents: navigation and interactions become
// log events directly, domain actions pass the capability gate and then
// either the "state:" mutation shorthand, a built-in, or a registered
// handler. Dispatch never lets a failure escape to the caller.
package bus

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/espalier/internal/gate"
	"github.com/aretw0/espalier/internal/state"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Bus is the single entry point for intents. The engine is synchronous and
// single-turn: concurrent dispatchers (e.g. the ops HTTP surface) serialize
// on the bus mutex, so a whole dispatch -> gate -> handler -> append -> fold
// -> notify turn completes before the next begins.
type Bus struct {
	mu       sync.Mutex
	store    *state.Store
	gate     *gate.Gate
	profile  *domain.Profile
	handlers ports.HandlerLookup
	logger   *slog.Logger
	observer ports.Observer
}

// Option configures the bus.
type Option func(*Bus)

// WithHandlers attaches the action handler registry.
func WithHandlers(handlers ports.HandlerLookup) Option {
	return func(b *Bus) {
		b.handlers = handlers
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithObserver reports dispatch outcomes.
func WithObserver(obs ports.Observer) Option {
	return func(b *Bus) {
		if obs != nil {
			b.observer = obs
		}
	}
}

// New creates a bus over the store, gate and capability profile.
func New(store *state.Store, g *gate.Gate, profile *domain.Profile, opts ...Option) *Bus {
	b := &Bus{
		store:    store,
		gate:     g,
		profile:  profile,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: ports.NopObserver{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatch routes one intent. It never returns an error and never panics:
// unknown actions are reported and dropped, handler faults are recovered,
// gated rejections are silent control flow.
func (b *Bus) Dispatch(ctx context.Context, intent domain.Intent) {
	if intent == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch v := intent.(type) {
	case domain.Navigate:
		b.store.Append(ctx, domain.Event{
			Intent:  domain.EventNavigate,
			Payload: map[string]any{"to": v.To},
		})
		b.observer.OnDispatch(string(domain.KindNavigate), ports.OutcomeApplied)

	case domain.Interaction:
		payload := map[string]any{}
		if v.Source != "" {
			payload["source"] = v.Source
		}
		for k, val := range v.Detail {
			payload[k] = val
		}
		b.store.Append(ctx, domain.Event{Intent: domain.EventInteraction, Payload: payload})
		b.observer.OnDispatch(string(domain.KindInteraction), ports.OutcomeApplied)

	case domain.DomainAction:
		outcome := b.dispatchAction(ctx, v)
		b.observer.OnDispatch(string(domain.KindAction), outcome)

	default:
		b.logger.Warn("unrecognized intent type dropped", "kind", intent.Kind())
		b.observer.OnDispatch(string(intent.Kind()), ports.OutcomeUnknown)
	}
}

func (b *Bus) dispatchAction(ctx context.Context, action domain.DomainAction) string {
	// Gating runs strictly before any handler side effect.
	if decision := b.gate.Evaluate(action.Name); !decision.Allowed {
		b.logger.Debug("action gated",
			"action", action.Name,
			"domain", decision.Domain,
			"reason", decision.Reason,
		)
		return ports.OutcomeGated
	}

	// "state:" shorthand: the suffix is the mutation name, params forward
	// verbatim as the event payload.
	if strings.HasPrefix(action.Name, domain.ActionPrefixState) {
		mutation := strings.TrimPrefix(action.Name, domain.ActionPrefixState)
		if mutation == "" {
			b.logger.Warn("empty state mutation name", "action", action.Name)
			return ports.OutcomeUnknown
		}
		b.store.Append(ctx, domain.Event{Intent: mutation, Payload: action.Params})
		return ports.OutcomeApplied
	}

	if action.Name == domain.ActionSetCapabilityLevel {
		return b.setCapabilityLevel(action)
	}

	if b.handlers != nil {
		if handler, ok := b.handlers.Lookup(action.Name); ok {
			return b.invoke(ctx, handler, action)
		}
	}

	b.logger.Warn("unknown action dropped", "action", action.Name)
	return ports.OutcomeUnknown
}

// invoke runs a handler with fault isolation: a panic or returned error is
// logged and swallowed so the pipeline keeps processing later dispatches.
func (b *Bus) invoke(ctx context.Context, handler ports.ActionHandler, action domain.DomainAction) (outcome string) {
	outcome = ports.OutcomeApplied
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("action handler panicked", "action", action.Name, "panic", r)
			outcome = ports.OutcomeFault
		}
	}()

	if err := handler(ctx, action, b.store.State()); err != nil {
		b.logger.Error("action handler failed", "action", action.Name, "err", err)
		return ports.OutcomeFault
	}
	return outcome
}

// setCapabilityLevel is the only sanctioned mutator of the capability
// profile.
func (b *Bus) setCapabilityLevel(action domain.DomainAction) string {
	var params struct {
		Domain string `mapstructure:"domain"`
		Level  string `mapstructure:"level"`
	}
	if err := mapstructure.Decode(action.Params, &params); err != nil || params.Domain == "" {
		b.logger.Warn("malformed capability payload", "action", action.Name, "err", err)
		return ports.OutcomeFault
	}

	level, err := domain.ParseLevel(params.Level)
	if err != nil {
		b.logger.Warn("rejected capability level", "domain", params.Domain, "err", err)
		return ports.OutcomeFault
	}

	b.profile.Set(params.Domain, level)
	b.logger.Info("capability level changed", "domain", params.Domain, "level", string(level))
	return ports.OutcomeApplied
}
