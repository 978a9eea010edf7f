package layout

import (
	"github.com/aretw0/espalier/pkg/domain"
)

// AllowedChildLayouts returns the child layout ids structurally permitted
// under a parent layout. Unknown parents yield the empty set — never a
// fallback to "all options". A known parent with an explicit empty entry
// means no child layout applies (e.g. a full-bleed hero without a card
// slot); both cases render the same empty result on purpose.
func (e *Engine) AllowedChildLayouts(parentID string) []string {
	children, ok := e.catalog.Children[parentID]
	if !ok {
		return []string{}
	}
	out := make([]string, len(children))
	copy(out, children)
	return out
}

// RequiredSlots returns the ordered slot names a node must supply for a
// layout. Organ layouts are keyed by (organID, internal layout id);
// everything else by (layoutType, layout id). A missing entry means no
// required slots.
func (e *Engine) RequiredSlots(layoutType domain.LayoutType, layoutID, organID string) []string {
	key := domain.RequirementKey{Type: layoutType, ID: layoutID}
	if layoutType == domain.LayoutOrgan {
		key.OrganID = organID
	}

	slots, ok := e.catalog.Requirements[key]
	if !ok {
		return nil
	}
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

// Satisfies reports whether the offered slots cover every required one.
// No requirements means always satisfied.
func Satisfies(required, offered []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(offered))
	for _, slot := range offered {
		have[slot] = struct{}{}
	}
	for _, slot := range required {
		if _, ok := have[slot]; !ok {
			return false
		}
	}
	return true
}
