package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	espalier "github.com/aretw0/espalier"
	opshttp "github.com/aretw0/espalier/internal/adapters/http"
	"github.com/aretw0/espalier/internal/observability"
	"github.com/aretw0/espalier/pkg/domain"
)

func testEngine(t *testing.T, opts ...espalier.Option) *espalier.Engine {
	t.Helper()

	cat := domain.NewCatalog()
	cat.Pages["hero-split"] = domain.PageLayout{ContainerWidth: "wide", Split: "60/40"}
	cat.Components["hero-split"] = domain.ComponentLayout{Type: domain.ArrangementRow}
	cat.Children["hero-split"] = []string{"card-basic"}
	pal := domain.CompilePalette(map[string]any{
		"color": map[string]any{"primary": "#000"},
	})

	opts = append([]espalier.Option{espalier.WithCatalog(cat), espalier.WithPalette(pal)}, opts...)
	eng, err := espalier.New("", opts...)
	require.NoError(t, err)
	return eng
}

func get(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func post(t *testing.T, srv *httptest.Server, path, body string, out any) *http.Response {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestServer_DispatchAndState(t *testing.T) {
	srv := httptest.NewServer(opshttp.NewHandler(testEngine(t)))
	defer srv.Close()

	var snap domain.DerivedState
	resp := post(t, srv, "/dispatch", `{"kind":"action","name":"state:journal.set","params":{"key":"note","value":"hi"}}`, &snap)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hi", snap.Journal["note"])

	post(t, srv, "/dispatch", `{"kind":"navigate","to":"pricing"}`, nil)

	var again domain.DerivedState
	get(t, srv, "/state", &again)
	assert.Equal(t, "pricing", again.Route)
	assert.Equal(t, 2, again.EventCount)
}

func TestServer_DispatchRejectsUnknownKind(t *testing.T) {
	srv := httptest.NewServer(opshttp.NewHandler(testEngine(t)))
	defer srv.Close()

	resp := post(t, srv, "/dispatch", `{"kind":"teleport"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Log(t *testing.T) {
	srv := httptest.NewServer(opshttp.NewHandler(testEngine(t)))
	defer srv.Close()

	post(t, srv, "/dispatch", `{"kind":"interaction","source":"scroll","detail":{"depth":0.4}}`, nil)

	var log []domain.Event
	get(t, srv, "/log", &log)
	require.Len(t, log, 1)
	assert.Equal(t, domain.EventInteraction, log[0].Intent)
	assert.NotEmpty(t, log[0].ID)
}

func TestServer_Layouts(t *testing.T) {
	srv := httptest.NewServer(opshttp.NewHandler(testEngine(t)))
	defer srv.Close()

	var def domain.Definition
	resp := get(t, srv, "/layouts/hero-split", &def)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "60/40", def.Split)
	require.NotNil(t, def.MoleculeLayout)

	resp = get(t, srv, "/layouts/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var children []string
	get(t, srv, "/layouts/hero-split/children", &children)
	assert.Equal(t, []string{"card-basic"}, children)

	get(t, srv, "/layouts/unknown/children", &children)
	assert.Empty(t, children, "unknown parents fail closed")
}

func TestServer_ResolveLayout(t *testing.T) {
	srv := httptest.NewServer(opshttp.NewHandler(testEngine(t)))
	defer srv.Close()

	var out struct {
		Definition *domain.Definition `json:"definition"`
		Params     map[string]any     `json:"params"`
	}
	resp := post(t, srv, "/layouts/resolve", `{"ref":{"id":"hero-split"},"params":{"gap":"xl"}}`, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, out.Definition)
	assert.Equal(t, "hero-split", out.Definition.ID)
	assert.Equal(t, "xl", out.Params["gap"])
}

func TestServer_TokenResolve(t *testing.T) {
	srv := httptest.NewServer(opshttp.NewHandler(testEngine(t)))
	defer srv.Close()

	var out map[string]any
	get(t, srv, "/tokens/resolve?path=color.primary", &out)
	assert.Equal(t, "#000", out["value"])

	resp := get(t, srv, "/tokens/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_TraceAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	tracer := observability.NewTracer(16)
	eng := testEngine(t, espalier.WithObserver(observability.NewFanout(metrics, tracer)))

	srv := httptest.NewServer(opshttp.NewHandler(eng,
		opshttp.WithTracer(tracer),
		opshttp.WithMetrics(reg),
	))
	defer srv.Close()

	get(t, srv, "/layouts/hero-split", nil)

	var steps []map[string]any
	get(t, srv, "/trace", &steps)
	assert.NotEmpty(t, steps)

	resp := get(t, srv, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Capabilities(t *testing.T) {
	eng := testEngine(t, espalier.WithLevels(map[string]domain.Level{"export": domain.LevelLite}))
	srv := httptest.NewServer(opshttp.NewHandler(eng))
	defer srv.Close()

	var levels map[string]domain.Level
	get(t, srv, "/capabilities", &levels)
	assert.Equal(t, domain.LevelLite, levels["export"])
}
