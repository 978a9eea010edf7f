// Package token resolves dotted token paths against a compiled palette.
// Resolution is pure and bounded: cyclic or malformed palettes terminate at a
// fixed depth and yield the last value obtained, never an error.
package token

import (
	"github.com/aretw0/espalier/pkg/domain"
)

// MaxDepth bounds reference chains. Beyond it the resolver returns whatever
// it last had in hand, so callers must treat results as best-effort rather
// than guaranteed-terminal.
const MaxDepth = 5

// Resolve resolves input against the palette.
//
// Non-token inputs (numbers, structs, strings that are not token-shaped)
// pass through unchanged. Token paths and References are walked through the
// palette, following further references up to MaxDepth hops.
func Resolve(input any, palette *domain.Palette) any {
	path, ok := pathOf(input)
	if !ok {
		return input
	}

	// last tracks the most recently obtained value; it is what we return on
	// a failed lookup or on depth exhaustion.
	var last any = path

	for depth := 0; depth < MaxDepth; depth++ {
		value, ok := palette.Lookup(path)
		if !ok {
			return last
		}

		switch v := value.(type) {
		case domain.Literal:
			return v.Value
		case domain.Reference:
			last = v.Path
			path = v.Path
		default:
			return last
		}
	}
	return last
}

// pathOf extracts a walkable path from the input, if it has one.
func pathOf(input any) (string, bool) {
	switch v := input.(type) {
	case domain.Reference:
		return v.Path, true
	case string:
		if domain.IsTokenPath(v) {
			return v, true
		}
	}
	return "", false
}
