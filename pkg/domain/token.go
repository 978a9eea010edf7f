package domain

import (
	"regexp"
	"strings"
)

// TokenValue is a palette entry decided at authoring (compile) time:
// either a terminal Literal or a Reference to another token path.
// Deciding this once removes the runtime ambiguity between a string value
// and a string that happens to look like a path.
type TokenValue interface {
	isTokenValue()
}

// Literal is a terminal palette value.
type Literal struct {
	Value any
}

func (Literal) isTokenValue() {}

// Reference points at another token path within the same palette.
type Reference struct {
	Path string
}

func (Reference) isTokenValue() {}

// tokenPathPattern matches dotted lower-case paths ("color.primary").
// A bare word without a dot is a plain value, not a path.
var tokenPathPattern = regexp.MustCompile(`^[a-z0-9_-]+(\.[a-z0-9_-]+)+$`)

// IsTokenPath reports whether s is token-shaped.
func IsTokenPath(s string) bool {
	return tokenPathPattern.MatchString(s)
}

// Palette is a compiled theme map: a tree whose leaves are TokenValues.
type Palette struct {
	root map[string]any // map[string]any | Literal | Reference
}

// CompilePalette classifies an authoring-form map (as decoded from YAML or
// JSON) into a palette. Strings that are token-shaped become References;
// everything else terminal becomes a Literal. Cycles are permitted: the
// resolver bounds its own walk.
func CompilePalette(src map[string]any) *Palette {
	return &Palette{root: compileNode(src)}
}

func compileNode(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		switch tv := v.(type) {
		case map[string]any:
			out[k] = compileNode(tv)
		case string:
			if IsTokenPath(tv) {
				out[k] = Reference{Path: tv}
			} else {
				out[k] = Literal{Value: tv}
			}
		default:
			out[k] = Literal{Value: v}
		}
	}
	return out
}

// Lookup walks a dotted path and returns the value at its end. It fails when
// a segment is missing or the walk ends on a subtree rather than a value.
func (p *Palette) Lookup(path string) (TokenValue, bool) {
	if p == nil {
		return nil, false
	}
	node := p.root
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		v, ok := node[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			tv, ok := v.(TokenValue)
			return tv, ok
		}
		sub, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		node = sub
	}
	return nil, false
}
