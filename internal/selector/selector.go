// Package selector chooses how a string switch is lowered: a flat chain of
// comparisons, a length-based probe tree, or a hash search. It also places the
// null check and the object downcast that must precede any probing.
//
// Selection is a pure function of its Request; it keeps no state between calls
// and may run concurrently for independent switches.
package selector

import (
	"errors"
	"fmt"

	"strswitch/internal/cases"
	"strswitch/internal/hashplan"
	"strswitch/internal/lengthplan"
	"strswitch/internal/plan"
	"strswitch/internal/strhash"
)

// DefaultMinCases is the smallest case count worth an indirect dispatch.
const DefaultMinCases = 7

// ErrNoEqualityOperator means the host cannot compare the scrutinee with a key,
// so no plan exists at all. Hosts report it as a build diagnostic.
var ErrNoEqualityOperator = errors.New("no sequence equality operator for the scrutinee type")

// Options carries host tuning. The zero value is not useful; start from DefaultOptions.
type Options struct {
	// MinCases is the case count below which the flat plan is used.
	MinCases int
	// DenseFactor is passed to the length-based planner.
	DenseFactor int
	// MaxProbeOffset is the largest cheaply indexable offset; negative means unlimited.
	MaxProbeOffset int
	// NodeBudgetFactor bounds length-based trees; see lengthplan.Options.
	NodeBudgetFactor int
	// DisableLengthBased is the host-wide switch forcing hash-based lowering.
	DisableLengthBased bool
	// Hash overrides the compile-time hash; nil uses the family routine.
	Hash strhash.Func
}

// DefaultOptions returns the tuning used when the host configures nothing.
func DefaultOptions() Options {
	return Options{
		MinCases:         DefaultMinCases,
		DenseFactor:      lengthplan.DefaultDenseFactor,
		MaxProbeOffset:   -1,
		NodeBudgetFactor: lengthplan.DefaultNodeBudgetFactor,
	}
}

// Request is everything selection depends on.
type Request struct {
	Table     *cases.Table
	Scrutinee cases.Scrutinee
	Caps      cases.Caps
	Options   Options
}

// Select lowers one switch.
func Select(req Request) (*plan.Plan, error) {
	tbl := req.Table
	if tbl == nil {
		return nil, fmt.Errorf("nil case table")
	}
	if !req.Caps.SequenceEquality {
		return nil, fmt.Errorf("%s scrutinee: %w", req.Scrutinee.Kind, ErrNoEqualityOperator)
	}

	p := &plan.Plan{
		Scrutinee: req.Scrutinee,
		Default:   tbl.Default,
		HashFunc:  req.Options.Hash,
	}
	b := plan.NewBuilder(4*len(tbl.Cases) + 4)

	body, err := selectBody(b, p, req)
	if err != nil {
		return nil, err
	}
	entry := body
	if req.Scrutinee.Kind == cases.KindObject {
		entry = b.Downcast(b.Default(), entry)
	}
	if req.Scrutinee.NeedsNullCheck(tbl) {
		var onNull plan.NodeID
		if tbl.HasNull() {
			onNull = b.Direct(tbl.Null)
		} else {
			onNull = b.Default()
		}
		entry = b.NullCheck(onNull, entry)
	}
	if p.Strategy != plan.StrategyHashBased {
		p.HashFunc = nil
	}
	return b.Finish(p, entry), nil
}

func selectBody(b *plan.Builder, p *plan.Plan, req Request) (plan.NodeID, error) {
	cs := req.Table.Cases
	opts := req.Options
	switch {
	case len(cs) == 0:
		return flat(b, p, nil, "no cases"), nil
	case !req.Caps.Length:
		return flat(b, p, cs, "length accessor unavailable"), nil
	case len(cs) < opts.MinCases:
		return flat(b, p, cs, fmt.Sprintf("%d cases, below %d", len(cs), opts.MinCases)), nil
	case opts.DisableLengthBased:
		return hashed(b, p, req, "length-based lowering disabled")
	}

	canIndex, viaSpan := req.Caps.Indexing(req.Scrutinee.Kind)
	res, err := lengthplan.Build(b, cs, lengthplan.Options{
		DenseFactor:      opts.DenseFactor,
		MaxProbeOffset:   opts.MaxProbeOffset,
		NodeBudgetFactor: opts.NodeBudgetFactor,
		CanIndex:         canIndex,
	})
	if err != nil {
		return plan.NoNodeID, err
	}
	if !res.Profitable {
		return hashed(b, p, req, "length-based not profitable: "+res.Reason)
	}
	p.Strategy = plan.StrategyLengthBased
	p.IndexViaSpan = viaSpan && res.MaxOffset >= 0
	p.Note = fmt.Sprintf("%d buckets over lengths %d..%d", res.Buckets, res.MinLen, res.MaxLen)
	return res.Root, nil
}

// flat chains confirmations in table order and ends in default.
func flat(b *plan.Builder, p *plan.Plan, cs []cases.Case, note string) plan.NodeID {
	p.Strategy = plan.StrategyFlat
	p.Note = note
	next := b.Default()
	for i := len(cs) - 1; i >= 0; i-- {
		next = b.Equality(cs[i].Key, cs[i].Target, next)
	}
	return next
}

func hashed(b *plan.Builder, p *plan.Plan, req Request, note string) (plan.NodeID, error) {
	family := HashFamily(req.Scrutinee.Kind)
	res, err := hashplan.Build(b, req.Table.Cases, family, req.Options.Hash)
	if err != nil {
		return plan.NoNodeID, err
	}
	p.Strategy = plan.StrategyHashBased
	p.HashFamily = family
	p.Note = note
	if res.Collisions > 0 {
		p.Note += fmt.Sprintf("; %d hash collisions", res.Collisions)
	}
	return res.Root, nil
}

// HashFamily picks the run-time hash routine for a scrutinee kind. Objects and
// nullable wrappers are hashed after they have been narrowed to an owned string.
func HashFamily(k cases.Kind) strhash.Family {
	if k == cases.KindCharSpan {
		return strhash.FamilySpan
	}
	return strhash.FamilyString
}
