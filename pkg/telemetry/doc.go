// Package telemetry provides observability for Ganymede.
//
// # Components
//
//   - logging: structured slog logging (JSON, text, console)
//   - metrics: Prometheus exposition endpoint
//
// Engine-level metric definitions live next to the engine itself; this tree
// only carries the transport and formatting concerns.
package telemetry
