// Package domain contains the core value types shared between the Espalier
// engine and its hosts: intents, events, derived state, capability profiles,
// layout definitions and token palettes.
//
// Types in this package are plain data. All behaviour (folding, gating,
// resolution) lives in the internal engines; hosts construct these values and
// hand them to the facade.
package domain
