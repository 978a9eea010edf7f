package observability

import (
	"sync"

	"github.com/aretw0/espalier/pkg/ports"
)

// defaultTraceDepth bounds the tracer ring.
const defaultTraceDepth = 64

// Tracer keeps the most recent resolution steps in a fixed-size ring so the
// ops surface can answer "why did this node get that layout" after the fact.
type Tracer struct {
	mu    sync.Mutex
	steps []ports.ResolutionStep
	next  int
	full  bool
}

// NewTracer creates a tracer keeping up to depth steps (<=0 uses the
// default).
func NewTracer(depth int) *Tracer {
	if depth <= 0 {
		depth = defaultTraceDepth
	}
	return &Tracer{steps: make([]ports.ResolutionStep, depth)}
}

// OnDispatch implements ports.Observer.
func (t *Tracer) OnDispatch(string, string) {}

// OnResolution implements ports.Observer.
func (t *Tracer) OnResolution(step ports.ResolutionStep) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps[t.next] = step
	t.next++
	if t.next == len(t.steps) {
		t.next = 0
		t.full = true
	}
}

// Recent returns the retained steps, oldest first.
func (t *Tracer) Recent() []ports.ResolutionStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]ports.ResolutionStep(nil), t.steps[:t.next]...)
	}
	out := make([]ports.ResolutionStep, 0, len(t.steps))
	out = append(out, t.steps[t.next:]...)
	out = append(out, t.steps[:t.next]...)
	return out
}
