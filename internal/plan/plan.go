// Package plan defines the decision structure produced by string-switch lowering
// and consumed by code emission: an arena of tagged nodes rooted at Entry.
//
// Every node has exactly one parent, so a plan is a finite tree. Case targets are
// reached only through an equality confirmation; cheaper probes (length, code unit,
// hash) only narrow the candidates.
package plan

import (
	"fmt"
	"strings"

	"strswitch/internal/cases"
	"strswitch/internal/strhash"
)

// Strategy records which lowering produced a plan.
type Strategy uint8

const (
	// StrategyFlat tests every case in order.
	StrategyFlat Strategy = iota
	// StrategyLengthBased dispatches on length, then on code units.
	StrategyLengthBased
	// StrategyHashBased binary-searches a run-time hash.
	StrategyHashBased
)

func (s Strategy) String() string {
	switch s {
	case StrategyFlat:
		return "flat"
	case StrategyLengthBased:
		return "length-based"
	case StrategyHashBased:
		return "hash-based"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy accepts a strategy name or its short form: flat, length or hash.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "flat":
		return StrategyFlat, nil
	case "length", "length-based":
		return StrategyLengthBased, nil
	case "hash", "hash-based":
		return StrategyHashBased, nil
	default:
		return StrategyFlat, fmt.Errorf("invalid strategy: %q (expected: flat|length|hash)", s)
	}
}

// Plan is the lowered form of one switch.
type Plan struct {
	Strategy  Strategy
	Scrutinee cases.Scrutinee
	Default   cases.Target
	// HashFamily names the run-time hash routine; set only for hash-based plans.
	HashFamily strhash.Family
	// IndexViaSpan asks the emitter to convert the string to a span once before
	// the first code-unit probe.
	IndexViaSpan bool
	// Note explains the strategy choice.
	Note string

	Nodes []Node
	Entry NodeID

	// HashFunc overrides the family routine. Hosts leave it nil; tests use it to
	// inject weak hashes.
	HashFunc strhash.Func `msgpack:"-"`
}

// Node returns the node with the given id, or nil when out of range.
func (p *Plan) Node(id NodeID) *Node {
	if p == nil || id < 0 || int(id) >= len(p.Nodes) {
		return nil
	}
	return &p.Nodes[id]
}

func (p *Plan) hashFunc() strhash.Func {
	if p.HashFunc != nil {
		return p.HashFunc
	}
	return p.HashFamily.Func()
}
