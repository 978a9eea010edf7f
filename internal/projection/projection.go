// Package projection turns the append-only event log into a DerivedState
// snapshot. Fold is the single authority translating "what happened" into
// "what is true now".
package projection

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Window bounds for the history aggregates.
const (
	routeHistorySize  = 10
	recentIntentsSize = 10
)

// Fold replays the log over an empty snapshot. It is pure: no I/O, no clock,
// no inputs besides the log. Folding the same log twice yields structurally
// equal snapshots.
func Fold(log []domain.Event) *domain.DerivedState {
	state := domain.NewDerivedState()
	for i, ev := range log {
		apply(state, ev, i)
	}
	return state
}

func apply(state *domain.DerivedState, ev domain.Event, seq int) {
	switch ev.Intent {
	case domain.EventNavigate:
		if to, ok := ev.Payload["to"].(string); ok && to != "" {
			state.Route = to
			state.RouteHistory = appendBounded(state.RouteHistory, to, routeHistorySize)
		}

	case domain.EventInteraction:
		rec := domain.InteractionRecord{Seq: seq}
		if src, ok := ev.Payload["source"].(string); ok {
			rec.Source = src
		}
		if len(ev.Payload) > 0 {
			rec.Detail = make(map[string]any, len(ev.Payload))
			for k, v := range ev.Payload {
				rec.Detail[k] = v
			}
		}
		state.Interactions = append(state.Interactions, rec)
		state.RawCount++

	case domain.EventValuesSet:
		if key, ok := ev.Payload["key"].(string); ok && key != "" {
			state.Values[key] = ev.Payload["value"]
		}

	case domain.EventValuesClear:
		if key, ok := ev.Payload["key"].(string); ok {
			delete(state.Values, key)
		}

	case domain.EventJournalSet:
		if key, ok := ev.Payload["key"].(string); ok && key != "" {
			state.Journal[key] = stringify(ev.Payload["value"])
		}

	case domain.EventJournalClear:
		if key, ok := ev.Payload["key"].(string); ok {
			delete(state.Journal, key)
		}

	case domain.EventCounterAdd:
		if key, ok := ev.Payload["key"].(string); ok && key != "" {
			state.Counters[key] += counterDelta(ev.Payload["by"])
		}
	}

	// Aggregates maintained for every event, recognized or not.
	state.EventCount++
	state.RecentIntents = appendBounded(state.RecentIntents, ev.Intent, recentIntentsSize)
}

// stringify renders journal values deterministically. fmt covers the scalar
// types the journal carries; map ordering never reaches here because journal
// values are scalars by convention.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// counterDelta interprets the optional "by" field, defaulting to 1.
func counterDelta(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 1
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return 1
	}
}

func appendBounded(window []string, v string, max int) []string {
	window = append(window, v)
	if len(window) > max {
		window = window[len(window)-max:]
	}
	return window
}
