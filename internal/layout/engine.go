// Package layout merges page-level placement and component-level arrangement
// definitions into concrete layout values, and answers structural fitness
// questions (child compatibility, required slots).
package layout

import (
	"io"
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Engine resolves layout references against an immutable catalog.
// Resolution is a pure function of the reference, the context and the
// catalog; the observer is a non-critical side channel.
type Engine struct {
	catalog  *domain.Catalog
	observer ports.Observer
	logger   *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithObserver records every resolution step.
func WithObserver(obs ports.Observer) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observer = obs
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine over a catalog. A nil catalog behaves as an empty
// one: every resolution misses.
func New(catalog *domain.Catalog, opts ...Option) *Engine {
	if catalog == nil {
		catalog = domain.NewCatalog()
	}
	e := &Engine{
		catalog:  catalog,
		observer: ports.NopObserver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve turns a layout reference into a concrete definition, or nil when
// the reference cannot be resolved. No partial definition is ever returned:
// a missing page entry is a miss even if a component entry exists.
func (e *Engine) Resolve(ref domain.Ref, ctx *domain.ResolveContext) *domain.Definition {
	id, rule := e.resolveID(ref, ctx)
	e.observe(ports.ResolutionStep{Stage: "resolve_id", LayoutID: id, Rule: rule})
	if id == "" {
		return nil
	}

	page, ok := e.catalog.Pages[id]
	if !ok {
		e.observe(ports.ResolutionStep{Stage: "page_lookup", LayoutID: id, Rule: "miss"})
		e.logger.Debug("no page layout for id", "layout_id", id)
		return nil
	}
	e.observe(ports.ResolutionStep{Stage: "page_lookup", LayoutID: id, Rule: "hit"})

	def := &domain.Definition{ID: id, PageLayout: page}

	// The component registry is independent; absence just omits the
	// arrangement.
	if comp, ok := e.catalog.Components[id]; ok {
		def.MoleculeLayout = cloneComponent(comp)
		e.observe(ports.ResolutionStep{Stage: "component_merge", LayoutID: id, Rule: "hit"})
	} else {
		e.observe(ports.ResolutionStep{Stage: "component_merge", LayoutID: id, Rule: "absent"})
	}

	return def
}

// resolveID applies the id resolution order: explicit id, template/slot
// lookup, then the per-template default when the context names a template.
func (e *Engine) resolveID(ref domain.Ref, ctx *domain.ResolveContext) (string, string) {
	if ref.ID != "" {
		return ref.ID, "explicit_id"
	}

	if ref.Template != "" && ref.Slot != "" {
		if slots, ok := e.catalog.TemplateSlots[ref.Template]; ok {
			if id, ok := slots[ref.Slot]; ok {
				return id, "template_slot"
			}
		}
		// An unknown template or slot falls through to the default below,
		// which still requires a context template.
	}

	if ctx != nil && ctx.TemplateID != "" {
		if id, ok := e.catalog.TemplateDefaults[ctx.TemplateID]; ok {
			return id, "template_default"
		}
	}

	return "", "miss"
}

func cloneComponent(c domain.ComponentLayout) *domain.ComponentLayout {
	out := c
	if c.Params != nil {
		out.Params = make(map[string]any, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

func (e *Engine) observe(step ports.ResolutionStep) {
	// Observer loss must never affect resolution.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("resolution observer panicked", "panic", r)
		}
	}()
	e.observer.OnResolution(step)
}
