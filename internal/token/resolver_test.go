package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/espalier/internal/token"
	"github.com/aretw0/espalier/pkg/domain"
)

func palette(src map[string]any) *domain.Palette {
	return domain.CompilePalette(src)
}

func TestResolve_PassThrough(t *testing.T) {
	p := palette(map[string]any{"color": map[string]any{"primary": "#000"}})

	assert.Equal(t, "#000", token.Resolve("#000", p), "non-token strings pass through")
	assert.Equal(t, 42, token.Resolve(42, p))
	assert.Equal(t, nil, token.Resolve(nil, p))
	assert.Equal(t, "plain", token.Resolve("plain", p), "dotless strings are values, not paths")
}

func TestResolve_Terminal(t *testing.T) {
	p := palette(map[string]any{
		"color": map[string]any{"primary": "#000"},
	})

	assert.Equal(t, "#000", token.Resolve("color.primary", p))
}

func TestResolve_ReferenceChain(t *testing.T) {
	p := palette(map[string]any{
		"color": map[string]any{
			"primary": "#5533ff",
			"accent":  "color.primary",
		},
		"button": map[string]any{
			"background": "color.accent",
		},
	})

	assert.Equal(t, "#5533ff", token.Resolve("button.background", p))
}

func TestResolve_MissingSegmentReturnsLastValue(t *testing.T) {
	p := palette(map[string]any{
		"color": map[string]any{"accent": "color.missing"},
	})

	// The walk reaches "color.missing", fails there, and returns it.
	assert.Equal(t, "color.missing", token.Resolve("color.accent", p))

	// A path that never resolves at all comes back unchanged.
	assert.Equal(t, "no.such.path", token.Resolve("no.such.path", p))
}

func TestResolve_CycleTerminates(t *testing.T) {
	p := palette(map[string]any{
		"a": map[string]any{"x": "b.x"},
		"b": map[string]any{"x": "a.x"},
	})

	// Must terminate within the depth bound and return some path value.
	result := token.Resolve("a.x", p)
	assert.Contains(t, []any{"a.x", "b.x"}, result)
}

func TestResolve_DepthBound(t *testing.T) {
	// A chain one hop longer than the bound stops at the bound.
	p := palette(map[string]any{
		"t0": map[string]any{"v": "t1.v"},
		"t1": map[string]any{"v": "t2.v"},
		"t2": map[string]any{"v": "t3.v"},
		"t3": map[string]any{"v": "t4.v"},
		"t4": map[string]any{"v": "t5.v"},
		"t5": map[string]any{"v": "#fff"},
	})

	assert.Equal(t, "t5.v", token.Resolve("t0.v", p), "chain exceeding MaxDepth returns the last reference reached")

	// One hop shorter resolves fully.
	assert.Equal(t, "#fff", token.Resolve("t1.v", p))
}

func TestResolve_CompiledReferenceInput(t *testing.T) {
	p := palette(map[string]any{
		"color": map[string]any{"primary": "#000"},
	})

	assert.Equal(t, "#000", token.Resolve(domain.Reference{Path: "color.primary"}, p))
}
