package ports

// ResolutionStep is one recorded step of a layout resolution: which stage
// ran, which rule decided it, and what it produced. Steps are a non-critical
// side channel; losing them never affects resolution results.
type ResolutionStep struct {
	Stage    string         `json:"stage"`     // e.g. "resolve_id", "page_lookup", "component_merge"
	LayoutID string         `json:"layout_id"` // the id in play, when known
	Rule     string         `json:"rule"`      // e.g. "explicit_id", "template_slot", "template_default", "miss"
	Detail   map[string]any `json:"detail,omitempty"`
}

// Observer receives engine activity. Implementations must be cheap and must
// not panic; the engine calls them synchronously on the dispatch path.
type Observer interface {
	// OnDispatch is called once per dispatched intent with its routing
	// outcome ("applied", "gated", "unknown", "fault").
	OnDispatch(kind string, outcome string)

	// OnResolution is called for every layout resolution step.
	OnResolution(step ResolutionStep)
}

// Dispatch outcomes reported to OnDispatch.
const (
	OutcomeApplied = "applied"
	OutcomeGated   = "gated"
	OutcomeUnknown = "unknown"
	OutcomeFault   = "fault"
)

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) OnDispatch(string, string) {}

func (NopObserver) OnResolution(ResolutionStep) {}
