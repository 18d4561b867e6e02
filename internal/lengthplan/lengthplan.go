// Package lengthplan lowers a string switch by dispatching on the scrutinee length
// and then separating same-length keys with single code-unit probes.
//
// Each length bucket picks the offset whose code units take the most distinct
// values, splits on it (a dense jump table when the values are close together, a
// binary range search otherwise) and recurses until one candidate is left. Every
// candidate ends in a full equality confirmation.
package lengthplan

import (
	"errors"
	"fmt"
	"slices"

	"strswitch/internal/cases"
	"strswitch/internal/plan"
)

const (
	// DefaultDenseFactor allows a jump table up to three entries per present value.
	DefaultDenseFactor = 3
	// DefaultNodeBudgetFactor caps the tree at this many nodes per case, plus slack.
	DefaultNodeBudgetFactor = 16
	nodeBudgetSlack         = 64
)

// ErrIndistinctKeys means two keys of one bucket agree on every offset, i.e. the
// table holds duplicate keys. The front end must never let that through.
var ErrIndistinctKeys = errors.New("keys cannot be told apart by any offset")

// Options tunes the planner. Zero fields take their defaults.
type Options struct {
	// DenseFactor bounds (max-min+1) of a jump table in multiples of the values present.
	DenseFactor int
	// MaxProbeOffset is the largest offset the host can index cheaply; negative means no limit.
	MaxProbeOffset int
	// NodeBudgetFactor bounds the node count per case; zero takes the default, negative disables the cap.
	NodeBudgetFactor int
	// CanIndex reports whether code units of the scrutinee can be read by offset.
	CanIndex bool
}

func (o Options) denseFactor() int {
	if o.DenseFactor <= 0 {
		return DefaultDenseFactor
	}
	return o.DenseFactor
}

func (o Options) nodeBudget(n int) int {
	switch {
	case o.NodeBudgetFactor < 0:
		return -1
	case o.NodeBudgetFactor == 0:
		return DefaultNodeBudgetFactor*n + nodeBudgetSlack
	default:
		return o.NodeBudgetFactor*n + nodeBudgetSlack
	}
}

// Result describes the tree Build produced.
type Result struct {
	Root plan.NodeID
	// Profitable is false when the tree was discarded; Reason says why.
	Profitable bool
	Reason     string

	MinLen, MaxLen int
	Buckets        int
	Nodes          int
	MaxOffset      int
}

type planner struct {
	b     *plan.Builder
	cases []cases.Case
	opts  Options

	maxOffset    int
	unprofitable string
	err          error

	seen map[uint16]struct{}
}

// Build appends a length-dispatch tree for cs to b. When the tree is not
// profitable every node it allocated is rolled back and Result.Profitable is false.
// An error is returned only for malformed input.
func Build(b *plan.Builder, cs []cases.Case, opts Options) (Result, error) {
	if len(cs) == 0 {
		return Result{}, fmt.Errorf("lengthplan: no cases")
	}
	buckets, minLen, maxLen := partition(cs)
	res := Result{Root: plan.NoNodeID, MinLen: minLen, MaxLen: maxLen, MaxOffset: -1}
	for _, bk := range buckets {
		if len(bk) > 0 {
			res.Buckets++
		}
	}

	if !opts.CanIndex {
		for l, bk := range buckets {
			if len(bk) > 1 {
				res.Reason = fmt.Sprintf("%d keys of length %d need code-unit probes but the scrutinee cannot be indexed", len(bk), minLen+l)
				return res, nil
			}
		}
	}

	mark := b.Mark()
	p := &planner{b: b, cases: cs, opts: opts, maxOffset: -1, seen: make(map[uint16]struct{})}
	table := make([]plan.NodeID, len(buckets))
	for l, bk := range buckets {
		if p.err != nil || p.unprofitable != "" {
			break
		}
		if len(bk) == 0 {
			table[l] = b.Default()
			continue
		}
		table[l] = p.bucket(bk, minLen+l)
	}
	if p.err != nil {
		b.Rollback(mark)
		return res, p.err
	}
	if p.unprofitable != "" {
		b.Rollback(mark)
		res.Reason = p.unprofitable
		return res, nil
	}

	root := b.LengthDispatch(minLen, table, b.Default())
	res.Nodes = b.Len() - mark
	res.MaxOffset = p.maxOffset
	if budget := opts.nodeBudget(len(cs)); budget >= 0 && res.Nodes > budget {
		b.Rollback(mark)
		res.Reason = fmt.Sprintf("tree needs %d nodes, budget is %d", res.Nodes, budget)
		res.Nodes = 0
		return res, nil
	}
	res.Root = root
	res.Profitable = true
	return res, nil
}

// partition groups case indices by key length over the dense span [minLen, maxLen].
// Indices keep source order inside a bucket.
func partition(cs []cases.Case) (buckets [][]int, minLen, maxLen int) {
	minLen, maxLen = cs[0].Key.Len(), cs[0].Key.Len()
	for _, c := range cs[1:] {
		minLen = min(minLen, c.Key.Len())
		maxLen = max(maxLen, c.Key.Len())
	}
	buckets = make([][]int, maxLen-minLen+1)
	for i, c := range cs {
		l := c.Key.Len() - minLen
		buckets[l] = append(buckets[l], i)
	}
	return buckets, minLen, maxLen
}

// bucket plans the candidates idx, all of the given length.
func (p *planner) bucket(idx []int, length int) plan.NodeID {
	if len(idx) == 1 {
		c := p.cases[idx[0]]
		return p.b.Equality(c.Key, c.Target, p.b.Default())
	}

	off, distinct := p.chooseOffset(idx, length)
	if distinct < 2 {
		p.fail(fmt.Errorf("%s and %s: %w", p.cases[idx[0]].Key.Quote(), p.cases[idx[1]].Key.Quote(), ErrIndistinctKeys))
		return plan.NoNodeID
	}
	if p.opts.MaxProbeOffset >= 0 && off > p.opts.MaxProbeOffset {
		p.unprofitable = fmt.Sprintf("length %d needs a probe at offset %d beyond the indexable limit %d", length, off, p.opts.MaxProbeOffset)
		return plan.NoNodeID
	}
	p.maxOffset = max(p.maxOffset, off)
	return p.split(p.groupAt(idx, off), off, length)
}

// chooseOffset returns the offset with the most distinct code units among idx,
// preferring the smallest offset on ties.
func (p *planner) chooseOffset(idx []int, length int) (best, bestCount int) {
	best = -1
	for off := 0; off < length; off++ {
		if p.opts.MaxProbeOffset >= 0 && off > p.opts.MaxProbeOffset && bestCount >= 2 {
			break
		}
		clear(p.seen)
		for _, i := range idx {
			p.seen[p.cases[i].Key.At(off)] = struct{}{}
		}
		if n := len(p.seen); n > bestCount {
			best, bestCount = off, n
			if n == len(idx) {
				break
			}
		}
	}
	return best, bestCount
}

type group struct {
	unit uint16
	idx  []int
}

// groupAt splits idx by the code unit at off, ordered by unit.
func (p *planner) groupAt(idx []int, off int) []group {
	var groups []group
	for _, i := range idx {
		u := p.cases[i].Key.At(off)
		pos, found := slices.BinarySearchFunc(groups, u, func(g group, u uint16) int {
			return int(g.unit) - int(u)
		})
		if found {
			groups[pos].idx = append(groups[pos].idx, i)
			continue
		}
		groups = slices.Insert(groups, pos, group{unit: u, idx: []int{i}})
	}
	return groups
}

// dense reports whether groups fit in a jump table.
func (p *planner) dense(groups []group) bool {
	spread := int(groups[len(groups)-1].unit) - int(groups[0].unit) + 1
	return spread <= p.opts.denseFactor()*len(groups)
}

// split emits a jump table when groups are dense enough, or a range comparison
// on the median unit otherwise.
func (p *planner) split(groups []group, off, length int) plan.NodeID {
	if p.dense(groups) {
		cs := make([]plan.CharCase, 0, len(groups))
		for _, g := range groups {
			next := p.bucket(g.idx, length)
			if p.err != nil || p.unprofitable != "" {
				return plan.NoNodeID
			}
			cs = append(cs, plan.CharCase{Unit: g.unit, Next: next})
		}
		return p.b.CharProbe(off, cs, p.b.Default())
	}
	mid := len(groups) / 2
	low := p.split(groups[:mid], off, length)
	if p.err != nil || p.unprofitable != "" {
		return plan.NoNodeID
	}
	high := p.split(groups[mid:], off, length)
	if p.err != nil || p.unprofitable != "" {
		return plan.NoNodeID
	}
	return p.b.RangeCompare(off, groups[mid-1].unit, low, high)
}

func (p *planner) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
