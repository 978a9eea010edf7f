package espalier_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/file"
	"github.com/aretw0/espalier/pkg/domain"
)

const testManifest = `
layouts:
  pages:
    hero-split:
      container_width: wide
      split: 60/40
    hero-full-bleed-image:
      container_width: full
      background_variant: image
  components:
    hero-split:
      type: row
      params:
        gap: lg
  children:
    hero-split: [hero-full-bleed-image]
    hero-full-bleed-image: []

palette:
  color:
    primary: "#000"
    accent: color.primary

capabilities:
  levels:
    export: "off"
  rules:
    - prefix: "export:"
      domain: export
`

func newEngine(t *testing.T, opts ...espalier.Option) *espalier.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "espalier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))

	eng, err := espalier.New(path, opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_StateShorthandMutation(t *testing.T) {
	eng := newEngine(t)

	eng.Dispatch(context.Background(), domain.DomainAction{
		Name:   "state:journal.set",
		Params: map[string]any{"key": "note", "value": "hi"},
	})

	assert.Equal(t, "hi", eng.State().Journal["note"])
}

func TestEngine_ChildCompatibilityFailsClosed(t *testing.T) {
	eng := newEngine(t)

	assert.Empty(t, eng.AllowedChildLayouts("hero-full-bleed-image"))
	assert.Empty(t, eng.AllowedChildLayouts("never-registered"))
	assert.Equal(t, []string{"hero-full-bleed-image"}, eng.AllowedChildLayouts("hero-split"))
}

func TestEngine_TokenResolution(t *testing.T) {
	eng := newEngine(t)

	assert.Equal(t, "#000", eng.ResolveToken("color.primary"))
	assert.Equal(t, "#000", eng.ResolveToken("color.accent"), "one-hop reference")
	assert.Equal(t, "plain string", eng.ResolveToken("plain string"), "non-token input passes through")
}

func TestEngine_TokenResolutionTerminatesOnCycles(t *testing.T) {
	pal := domain.CompilePalette(map[string]any{
		"a": map[string]any{"x": "b.y"},
		"b": map[string]any{"y": "a.x"},
	})
	eng, err := espalier.New("", espalier.WithPalette(pal))
	require.NoError(t, err)

	// Must return (the last obtained value), never hang.
	assert.Equal(t, "b.y", eng.ResolveToken("a.x"))
}

func TestEngine_GatedDomainNeverInvokesHandler(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	calls := 0
	eng.Register("export:download", func(context.Context, domain.DomainAction, *domain.DerivedState) error {
		calls++
		return nil
	})

	eng.Dispatch(ctx, domain.DomainAction{Name: "export:download"})
	assert.Equal(t, 0, calls, "level off rejects unconditionally")

	// Raising the level through the sanctioned diagnostics action unlocks it.
	eng.Dispatch(ctx, domain.DomainAction{
		Name:   domain.ActionSetCapabilityLevel,
		Params: map[string]any{"domain": "export", "level": "basic"},
	})
	eng.Dispatch(ctx, domain.DomainAction{Name: "export:download"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.LevelBasic, eng.Capabilities()["export"])
}

func TestEngine_LayoutMergeCompleteness(t *testing.T) {
	eng := newEngine(t)

	def := eng.ResolveLayout(domain.RefID("hero-split"), nil)
	require.NotNil(t, def)
	assert.Equal(t, "60/40", def.Split)
	require.NotNil(t, def.MoleculeLayout)
	assert.Equal(t, domain.ArrangementRow, def.MoleculeLayout.Type)

	def = eng.ResolveLayout(domain.RefID("hero-full-bleed-image"), nil)
	require.NotNil(t, def)
	assert.Nil(t, def.MoleculeLayout)

	assert.Nil(t, eng.ResolveLayout(domain.RefID("missing"), nil))
}

func TestEngine_HandlerAppendsEvents(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	eng.Register("cart:add", func(ctx context.Context, action domain.DomainAction, s *domain.DerivedState) error {
		eng.Append(ctx, domain.Event{Intent: domain.EventCounterAdd, Payload: map[string]any{"key": "cart"}})
		return nil
	})

	eng.Dispatch(ctx, domain.DomainAction{Name: "cart:add"})
	eng.Dispatch(ctx, domain.DomainAction{Name: "cart:add"})

	assert.InDelta(t, 2, eng.State().Counters["cart"], 1e-9)
}

func TestEngine_SubscribersSeeEveryAppend(t *testing.T) {
	eng := newEngine(t)

	var routes []string
	unsubscribe := eng.Subscribe(func(s *domain.DerivedState) {
		routes = append(routes, s.Route)
	})

	eng.Dispatch(context.Background(), domain.Navigate{To: "pricing"})
	eng.Dispatch(context.Background(), domain.Navigate{To: "faq"})
	unsubscribe()
	eng.Dispatch(context.Background(), domain.Navigate{To: "home"})

	assert.Equal(t, []string{"pricing", "faq"}, routes)
}

func TestEngine_RestartRecoversFromSink(t *testing.T) {
	ctx := context.Background()
	logPath := filepath.Join(t.TempDir(), "events.json")

	first, err := espalier.New("", espalier.WithEventSink(file.New(logPath)))
	require.NoError(t, err)
	first.Dispatch(ctx, domain.DomainAction{
		Name:   "state:values.set",
		Params: map[string]any{"key": "theme", "value": "dark"},
	})
	first.Dispatch(ctx, domain.Navigate{To: "settings"})

	second, err := espalier.New("", espalier.WithEventSink(file.New(logPath)))
	require.NoError(t, err)
	second.Load(ctx)

	snap := second.State()
	assert.Equal(t, "dark", snap.Values["theme"])
	assert.Equal(t, "settings", snap.Route)
	assert.Equal(t, 2, snap.EventCount)
}

func TestEngine_MissingSinkDegradesToEmpty(t *testing.T) {
	eng, err := espalier.New("", espalier.WithEventSink(file.New(filepath.Join(t.TempDir(), "absent.json"))))
	require.NoError(t, err)
	eng.Load(context.Background())

	assert.Equal(t, 0, eng.State().EventCount)
}

func TestNew_ManifestErrors(t *testing.T) {
	_, err := espalier.New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("layouts:\n  components:\n    x:\n      type: diagonal\n"), 0o644))
	_, err = espalier.New(bad)
	assert.Error(t, err)
}
