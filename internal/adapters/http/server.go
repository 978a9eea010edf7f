// Package http exposes the runtime over a small ops surface: inspect derived
// state and the event log, dispatch intents, resolve layouts and tokens, and
// stream state changes.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Engine is the slice of the runtime the ops surface needs.
type Engine interface {
	Dispatch(ctx context.Context, intent domain.Intent)
	State() *domain.DerivedState
	Log() []domain.Event
	Subscribe(fn func(*domain.DerivedState)) func()
	ResolveLayout(ref domain.Ref, rctx *domain.ResolveContext) *domain.Definition
	Overlay(def *domain.Definition, rctx *domain.ResolveContext, params map[string]any) map[string]any
	AllowedChildLayouts(parent string) []string
	ResolveToken(input any) any
	Capabilities() map[string]domain.Level
}

// Tracer answers "why did this node get that layout" after the fact.
type Tracer interface {
	Recent() []ports.ResolutionStep
}

// Server routes ops requests to the engine.
type Server struct {
	engine   Engine
	tracer   Tracer
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithTracer enables the GET /trace endpoint.
func WithTracer(tracer Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithMetrics enables the GET /metrics endpoint.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the ops HTTP handler.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/state", s.getState)
	r.Get("/log", s.getLog)
	r.Post("/dispatch", s.dispatch)
	r.Post("/layouts/resolve", s.resolveLayout)
	r.Get("/layouts/{id}", s.getLayout)
	r.Get("/layouts/{id}/children", s.getChildren)
	r.Get("/capabilities", s.getCapabilities)
	r.Get("/tokens/resolve", s.resolveToken)
	r.Get("/trace", s.getTrace)
	r.Get("/events", s.streamEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.State())
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	log := s.engine.Log()
	if log == nil {
		log = []domain.Event{}
	}
	s.writeJSON(w, log)
}

// dispatchRequest is the wire form of an intent: a kind discriminator plus
// the intent's own fields, flat.
type dispatchRequest struct {
	Kind   string         `json:"kind"`
	To     string         `json:"to,omitempty"`
	Name   string         `json:"name,omitempty"`
	Params map[string]any `json:"params,omitempty"`
	Source string         `json:"source,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	var body dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var intent domain.Intent
	switch domain.IntentKind(body.Kind) {
	case domain.KindNavigate:
		intent = domain.Navigate{To: body.To}
	case domain.KindAction:
		intent = domain.DomainAction{Name: body.Name, Params: body.Params}
	case domain.KindInteraction:
		intent = domain.Interaction{Source: body.Source, Detail: body.Detail}
	default:
		http.Error(w, fmt.Sprintf("Unknown intent kind %q", body.Kind), http.StatusBadRequest)
		return
	}

	// Dispatch never fails; gated and unknown actions are silent no-ops.
	s.engine.Dispatch(r.Context(), intent)
	s.writeJSON(w, s.engine.State())
}

// resolveRequest addresses a layout plus the per-node context and explicit
// params for the overlay.
type resolveRequest struct {
	Ref     map[string]any `json:"ref"`
	Context map[string]any `json:"context,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

type resolveResponse struct {
	Definition *domain.Definition `json:"definition"`
	Params     map[string]any     `json:"params"`
}

func (s *Server) resolveLayout(w http.ResponseWriter, r *http.Request) {
	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var ref domain.Ref
	if err := mapstructure.Decode(body.Ref, &ref); err != nil {
		http.Error(w, fmt.Sprintf("Invalid layout ref: %v", err), http.StatusBadRequest)
		return
	}
	var rctx *domain.ResolveContext
	if body.Context != nil {
		rctx = &domain.ResolveContext{}
		if err := mapstructure.Decode(body.Context, rctx); err != nil {
			http.Error(w, fmt.Sprintf("Invalid resolve context: %v", err), http.StatusBadRequest)
			return
		}
	}

	def := s.engine.ResolveLayout(ref, rctx)
	s.writeJSON(w, resolveResponse{
		Definition: def,
		Params:     s.engine.Overlay(def, rctx, body.Params),
	})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def := s.engine.ResolveLayout(domain.RefID(id), nil)
	if def == nil {
		http.Error(w, fmt.Sprintf("Unknown layout %q", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, def)
}

func (s *Server) getChildren(w http.ResponseWriter, r *http.Request) {
	children := s.engine.AllowedChildLayouts(chi.URLParam(r, "id"))
	if children == nil {
		children = []string{}
	}
	s.writeJSON(w, children)
}

func (s *Server) getCapabilities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Capabilities())
}

func (s *Server) resolveToken(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing path query parameter", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]any{
		"path":  path,
		"value": s.engine.ResolveToken(path),
	})
}

func (s *Server) getTrace(w http.ResponseWriter, r *http.Request) {
	steps := []ports.ResolutionStep{}
	if s.tracer != nil {
		if recent := s.tracer.Recent(); recent != nil {
			steps = recent
		}
	}
	s.writeJSON(w, steps)
}

// streamEvents pushes a derived-state snapshot per append as SSE. Slow
// consumers skip snapshots instead of blocking the dispatch turn.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := make(chan *domain.DerivedState, 8)
	unsubscribe := s.engine.Subscribe(func(snapshot *domain.DerivedState) {
		select {
		case updates <- snapshot:
		default:
		}
	})
	defer unsubscribe()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot := <-updates:
			data, err := json.Marshal(snapshot)
			if err != nil {
				s.logger.Error("failed to encode state snapshot", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}
