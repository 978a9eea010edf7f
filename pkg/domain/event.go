package domain

import "time"

// Well-known event intents consumed by the projection fold.
const (
	// EventNavigate records a route change. Payload: {"to": string}.
	EventNavigate = "nav.goto"

	// EventInteraction records a raw UI interaction. Payload is free-form.
	EventInteraction = "interaction"

	// Mutation intents, reachable via the "state:" action shorthand.
	EventValuesSet    = "values.set"    // {"key", "value"}
	EventValuesClear  = "values.clear"  // {"key"}
	EventJournalSet   = "journal.set"   // {"key", "value"}
	EventJournalClear = "journal.clear" // {"key"}
	EventCounterAdd   = "counter.add"   // {"key", "by"?}
)

// Event is an immutable record in the append-only log. Order is defined by
// log position; the At timestamp is informational only and must not affect
// folding.
type Event struct {
	ID      string         `json:"id,omitempty"`
	Intent  string         `json:"intent"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at,omitempty"`
}

// Clone returns a copy with a shallow-copied payload map, so the caller can
// hold the event without aliasing the log.
func (e Event) Clone() Event {
	out := e
	if e.Payload != nil {
		out.Payload = make(map[string]any, len(e.Payload))
		for k, v := range e.Payload {
			out.Payload[k] = v
		}
	}
	return out
}

// CloneLog deep-copies an event log.
func CloneLog(log []Event) []Event {
	if log == nil {
		return nil
	}
	out := make([]Event, len(log))
	for i, e := range log {
		out[i] = e.Clone()
	}
	return out
}
