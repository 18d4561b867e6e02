// Package strhash implements the string hash used by hash-bucket switch lowering.
//
// The planner sorts case keys by this hash at compile time and the emitted code
// recomputes it on the scrutinee at run time, so both sides must agree bit for bit.
// Two routine families exist: one walks an owned string, the other walks a span of
// UTF-16 code units. They hash the same code unit sequence to the same value.
package strhash
