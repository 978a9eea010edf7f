// Package graph renders the manifest's layout structure as a Mermaid
// flowchart: templates feeding their slot layouts, and the child
// compatibility edges between layouts.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Overlay contains dynamic data to visualize on the graph.
type Overlay struct {
	// Highlight marks layout ids to emphasize (e.g. the ids resolved for the
	// current route).
	Highlight []string
}

// GenerateMermaid produces Mermaid flowchart syntax from a layout catalog.
// It applies semantic styling:
// - Template: ((Circle))
// - Layout with a component arrangement: [[Subroutine]]
// - Page-only layout: [Rectangle]
// Slot bindings are labeled solid edges, template defaults and child
// compatibility are dotted.
func GenerateMermaid(cat *domain.Catalog, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, template := range sortedKeys(cat.TemplateSlots) {
		safeID := sanitizeMermaidID("tpl/" + template)
		sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", safeID, template))

		slots := cat.TemplateSlots[template]
		for _, slot := range sortedKeys(slots) {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, slot, sanitizeMermaidID(slots[slot])))
		}
	}
	for _, template := range sortedKeys(cat.TemplateDefaults) {
		safeID := sanitizeMermaidID("tpl/" + template)
		if _, drawn := cat.TemplateSlots[template]; !drawn {
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", safeID, template))
		}
		sb.WriteString(fmt.Sprintf("    %s -. \"default\" .-> %s\n", safeID, sanitizeMermaidID(cat.TemplateDefaults[template])))
	}

	for _, id := range sortedKeys(cat.Pages) {
		safeID := sanitizeMermaidID(id)

		// Node shape marks whether an inner arrangement exists.
		opener, closer := "[", "]"
		if _, ok := cat.Components[id]; ok {
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, id, closer))

		for _, child := range cat.Children[id] {
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", safeID, sanitizeMermaidID(child)))
		}
	}

	// Apply Overlay Styles
	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlight {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlight;\n", safeID))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
