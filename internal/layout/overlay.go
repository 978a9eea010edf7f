package layout

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Overlay computes the effective parameter map the rendering layer applies
// on top of a resolved definition. Precedence, lowest to highest:
//
//  1. visual preset, chosen by molecule type or by the experience default
//  2. spacing-scale override for the context scope
//  3. the component's own preset layer (e.g. a "card" surface style)
//  4. the node's explicit params, which always win outright
func (e *Engine) Overlay(def *domain.Definition, ctx *domain.ResolveContext, nodeParams map[string]any) map[string]any {
	out := make(map[string]any)
	if def == nil {
		// Still honour explicit params so callers can rely on them winning.
		merge(out, nodeParams)
		return out
	}

	if ctx != nil {
		if name := e.visualPreset(ctx); name != "" {
			merge(out, e.catalog.Presets[name])
			e.observe(ports.ResolutionStep{Stage: "overlay_preset", LayoutID: def.ID, Rule: name})
		}
		if scale, ok := e.catalog.Spacing[ctx.Scope]; ok {
			merge(out, scale)
			e.observe(ports.ResolutionStep{Stage: "overlay_spacing", LayoutID: def.ID, Rule: string(ctx.Scope)})
		}
	}

	if def.MoleculeLayout != nil && def.MoleculeLayout.Preset != "" {
		merge(out, e.catalog.Presets[def.MoleculeLayout.Preset])
		e.observe(ports.ResolutionStep{Stage: "overlay_molecule_preset", LayoutID: def.ID, Rule: def.MoleculeLayout.Preset})
	}

	merge(out, nodeParams)
	return out
}

// visualPreset picks the base preset: molecule type first, experience
// default second.
func (e *Engine) visualPreset(ctx *domain.ResolveContext) string {
	if ctx.MoleculeType != "" {
		if name, ok := e.catalog.MoleculePresets[ctx.MoleculeType]; ok {
			return name
		}
	}
	if ctx.Experience != "" {
		if name, ok := e.catalog.ExperiencePresets[ctx.Experience]; ok {
			return name
		}
	}
	return ""
}

func merge(dst map[string]any, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
