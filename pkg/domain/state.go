package domain

// InteractionRecord is one raw interaction preserved by the fold, in log
// order. Seq is the log position of the originating event.
type InteractionRecord struct {
	Seq    int            `json:"seq"`
	Source string         `json:"source,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// DerivedState is the structured snapshot obtained by folding the event log.
// It is never mutated in place; the store replaces it wholesale after every
// append. Everything the rest of the system reads comes from here.
type DerivedState struct {
	// Values is the general-purpose key/value projection ("values.set").
	Values map[string]any `json:"values"`

	// Journal holds user-visible notes keyed by name ("journal.set").
	// Values are stringified deterministically at fold time.
	Journal map[string]string `json:"journal"`

	// Interactions preserves raw interaction events in log order.
	Interactions []InteractionRecord `json:"interactions"`

	// RawCount is the number of raw interaction events folded so far.
	RawCount int `json:"raw_count"`

	// Counters accumulates "counter.add" events.
	Counters map[string]float64 `json:"counters"`

	// Route is the current navigation target; RouteHistory keeps the most
	// recent targets (bounded window, oldest dropped first).
	Route        string   `json:"route,omitempty"`
	RouteHistory []string `json:"route_history,omitempty"`

	// RecentIntents is a bounded window of the last folded event intents,
	// kept for diagnostics surfaces.
	RecentIntents []string `json:"recent_intents,omitempty"`

	// EventCount is the total number of events folded, including ones the
	// fold did not otherwise recognize.
	EventCount int `json:"event_count"`
}

// NewDerivedState returns the empty snapshot the fold starts from.
func NewDerivedState() *DerivedState {
	return &DerivedState{
		Values:       make(map[string]any),
		Journal:      make(map[string]string),
		Interactions: []InteractionRecord{},
		Counters:     make(map[string]float64),
	}
}

// Clone returns a deep copy so callers cannot mutate the store's snapshot
// through the pointer they were handed.
func (s *DerivedState) Clone() *DerivedState {
	if s == nil {
		return nil
	}
	out := &DerivedState{
		Values:       make(map[string]any, len(s.Values)),
		Journal:      make(map[string]string, len(s.Journal)),
		Interactions: make([]InteractionRecord, len(s.Interactions)),
		Counters:     make(map[string]float64, len(s.Counters)),
		Route:        s.Route,
		RawCount:     s.RawCount,
		EventCount:   s.EventCount,
	}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	for k, v := range s.Journal {
		out.Journal[k] = v
	}
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	for i, rec := range s.Interactions {
		cp := rec
		if rec.Detail != nil {
			cp.Detail = make(map[string]any, len(rec.Detail))
			for k, v := range rec.Detail {
				cp.Detail[k] = v
			}
		}
		out.Interactions[i] = cp
	}
	if s.RouteHistory != nil {
		out.RouteHistory = append([]string(nil), s.RouteHistory...)
	}
	if s.RecentIntents != nil {
		out.RecentIntents = append([]string(nil), s.RecentIntents...)
	}
	return out
}
