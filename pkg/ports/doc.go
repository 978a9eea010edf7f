// Package ports defines the boundary contracts of the Espalier runtime:
// how the event log is persisted, how handlers are looked up, and how
// resolution/dispatch activity is observed.
//
// The engine depends only on these interfaces; concrete implementations live
// in pkg/adapters (sinks), pkg/registry (handlers) and internal/observability
// (observers). This keeps the core decoupled from storage and telemetry.
package ports
