package espalier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/espalier/internal/bus"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/gate"
	"github.com/aretw0/espalier/internal/layout"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/state"
	"github.com/aretw0/espalier/internal/token"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

// Engine is the high-level entry point for the Espalier library.
// It wires the event store, intent router, capability gate, layout engine and
// token resolver behind a simplified API for consumers.
type Engine struct {
	store    *state.Store
	bus      *bus.Bus
	layouts  *layout.Engine
	palette  *domain.Palette
	profile  *domain.Profile
	handlers *registry.Registry

	catalog  *domain.Catalog
	rules    domain.RuleSet
	levels   map[string]domain.Level
	sink     ports.EventSink
	observer ports.Observer
	logger   *slog.Logger
	seed     map[string]ports.ActionHandler
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventSink attaches a persistence sink for the event log.
func WithEventSink(sink ports.EventSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithObserver registers an observability hook for dispatch outcomes and
// layout resolution steps.
func WithObserver(obs ports.Observer) Option {
	return func(e *Engine) {
		e.observer = obs
	}
}

// WithCatalog injects a layout catalog, bypassing the manifest.
func WithCatalog(cat *domain.Catalog) Option {
	return func(e *Engine) {
		e.catalog = cat
	}
}

// WithPalette injects a compiled token palette, bypassing the manifest.
func WithPalette(pal *domain.Palette) Option {
	return func(e *Engine) {
		e.palette = pal
	}
}

// WithRules injects capability gating rules, bypassing the manifest.
func WithRules(rules domain.RuleSet) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithLevels sets the initial capability levels, bypassing the manifest.
func WithLevels(levels map[string]domain.Level) Option {
	return func(e *Engine) {
		e.levels = levels
	}
}

// WithHandler registers an action handler at construction time. Equivalent to
// calling Register after New.
func WithHandler(name string, handler ports.ActionHandler) Option {
	return func(e *Engine) {
		if e.seed == nil {
			e.seed = make(map[string]ports.ActionHandler)
		}
		e.seed[name] = handler
	}
}

// New initializes a new Espalier Engine.
// By default it loads the manifest at the given path. manifestPath may be
// empty when the catalog, palette and rules are injected via options (or when
// an empty runtime is acceptable, e.g. in tests).
func New(manifestPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply options first so a provided catalog/palette skips the manifest.
	for _, opt := range opts {
		opt(eng)
	}

	if manifestPath != "" {
		manifest, err := config.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		if err := eng.adopt(manifest); err != nil {
			return nil, err
		}
	}

	if eng.catalog == nil {
		eng.catalog = domain.NewCatalog()
	}
	if eng.palette == nil {
		eng.palette = domain.CompilePalette(nil)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.profile = domain.NewProfile(eng.levels)
	eng.handlers = registry.New()
	for name, handler := range eng.seed {
		eng.handlers.Register(name, handler)
	}
	eng.store = state.New(
		state.WithSink(eng.sink),
		state.WithLogger(eng.logger),
	)

	layoutOpts := []layout.Option{layout.WithLogger(eng.logger)}
	busOpts := []bus.Option{
		bus.WithHandlers(eng.handlers),
		bus.WithLogger(eng.logger),
	}
	if eng.observer != nil {
		layoutOpts = append(layoutOpts, layout.WithObserver(eng.observer))
		busOpts = append(busOpts, bus.WithObserver(eng.observer))
	}

	eng.layouts = layout.New(eng.catalog, layoutOpts...)
	eng.bus = bus.New(eng.store, gate.New(eng.profile, eng.rules), eng.profile, busOpts...)

	return eng, nil
}

// adopt fills unset configuration from a loaded manifest. Options win over
// manifest sections.
func (e *Engine) adopt(manifest *config.Manifest) error {
	if e.catalog == nil {
		cat, err := manifest.Catalog()
		if err != nil {
			return fmt.Errorf("invalid layout catalog: %w", err)
		}
		e.catalog = cat
	}
	if e.palette == nil {
		e.palette = manifest.CompilePalette()
	}
	if e.rules.Exact == nil && e.rules.Prefix == nil {
		rules, err := manifest.Rules()
		if err != nil {
			return fmt.Errorf("invalid capability rules: %w", err)
		}
		e.rules = rules
	}
	if e.levels == nil {
		levels, err := manifest.Levels()
		if err != nil {
			return fmt.Errorf("invalid capability levels: %w", err)
		}
		e.levels = levels
	}
	return nil
}

// Load replaces the event log with whatever the configured sink holds and
// re-derives state. Without a sink (or with an unreachable one) the engine
// starts empty; persistence is never required for correctness.
func (e *Engine) Load(ctx context.Context) {
	e.store.Load(ctx)
}

// Dispatch routes one UI intent through the gate, router and event store.
// It never returns an error: gated, unknown and faulting actions degrade to
// logged no-ops.
func (e *Engine) Dispatch(ctx context.Context, intent domain.Intent) {
	e.bus.Dispatch(ctx, intent)
}

// Append adds an event to the log directly, bypassing the router. Handlers
// use it to record the effects of an action; appends issued from inside a
// dispatch turn are queued behind the active fold rather than interleaving.
func (e *Engine) Append(ctx context.Context, ev domain.Event) {
	e.store.Append(ctx, ev)
}

// State returns a copy of the current derived state.
func (e *Engine) State() *domain.DerivedState {
	return e.store.State()
}

// Log returns a copy of the event log.
func (e *Engine) Log() []domain.Event {
	return e.store.Log()
}

// Subscribe registers fn to receive a fresh snapshot after every append and
// returns an unsubscribe function.
func (e *Engine) Subscribe(fn func(*domain.DerivedState)) func() {
	return e.store.Subscribe(fn)
}

// Register binds an action handler to an action name. Registration is
// idempotent per name: the last handler wins.
func (e *Engine) Register(name string, handler ports.ActionHandler) {
	e.handlers.Register(name, handler)
}

// ResolveLayout resolves a layout reference to its full definition, or nil
// when the reference misses.
func (e *Engine) ResolveLayout(ref domain.Ref, rctx *domain.ResolveContext) *domain.Definition {
	return e.layouts.Resolve(ref, rctx)
}

// Overlay merges visual preset, spacing and explicit params for a resolved
// definition.
func (e *Engine) Overlay(def *domain.Definition, rctx *domain.ResolveContext, params map[string]any) map[string]any {
	return e.layouts.Overlay(def, rctx, params)
}

// AllowedChildLayouts returns the child layout ids permitted under a parent,
// empty (never nil semantics: fail closed) for unknown parents.
func (e *Engine) AllowedChildLayouts(parent string) []string {
	return e.layouts.AllowedChildLayouts(parent)
}

// RequiredSlots returns the slots a node must supply for a layout.
func (e *Engine) RequiredSlots(t domain.LayoutType, id, organID string) []string {
	return e.layouts.RequiredSlots(t, id, organID)
}

// ResolveToken resolves a design token value against the palette, following
// references up to the resolver's depth bound.
func (e *Engine) ResolveToken(input any) any {
	return token.Resolve(input, e.palette)
}

// Capabilities returns a copy of the current capability levels.
func (e *Engine) Capabilities() map[string]domain.Level {
	return e.profile.Snapshot()
}
