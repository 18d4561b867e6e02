// Package trace records what the planner did and how long it took.
//
// Enable tracing from the command line:
//
//	strswitch plan --trace=- --trace-level=switch routes.switch.toml
//
// # Tracers
//
//   - Nop: disabled tracing, no allocation per event
//   - StreamTracer: writes every event to a file or stderr as it happens
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: fans events out to several tracers
//
// # Scopes and levels
//
// Each event has a scope, from coarse to fine: run, file, switch, bucket.
// The level decides the finest scope that is recorded; LevelFile keeps run and
// file events, LevelSwitch adds one span per switch, and LevelDebug adds the
// per-bucket events of the length-based planner.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSwitch, "switch:routes", trace.ParentFrom(ctx))
//	defer span.End("")
package trace
