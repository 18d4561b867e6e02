package plan

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"strswitch/internal/cases"
)

// Validate checks plan invariants:
//  1. every child id is in range and every node has exactly one parent;
//  2. every node is reachable from Entry;
//  3. code-unit probes only happen below a length dispatch and within that length;
//  4. case targets are reached only through a confirmation (a direct target may
//     only answer a null check);
//  5. confirmations agree with every probe taken on the way to them;
//  6. hash splits and leaves sit below a hash dispatch and respect BST ordering.
func Validate(p *Plan) error {
	if p == nil {
		return nil
	}
	if p.Node(p.Entry) == nil {
		return fmt.Errorf("entry n%d out of range (nodes=%d)", p.Entry, len(p.Nodes))
	}
	v := validator{p: p, parents: make([]int, len(p.Nodes))}
	v.parents[p.Entry]++
	v.walk(p.Entry, walkCtx{length: -1, hashLo: 0, hashHi: math.MaxUint32, rangeOff: -1})
	for i, n := range v.parents {
		switch {
		case n == 0:
			v.errs = append(v.errs, fmt.Errorf("n%d: unreachable", i))
		case n > 1:
			v.errs = append(v.errs, fmt.Errorf("n%d: shared by %d parents", i, n))
		}
	}
	return errors.Join(v.errs...)
}

type pin struct {
	off  int
	unit uint16
}

type walkCtx struct {
	parent NodeKind
	length int
	inHash bool
	hashLo uint64
	hashHi uint64

	rangeOff int
	unitLo   uint16
	unitHi   uint16

	pins []pin
}

func (c walkCtx) pinned(off int, u uint16) walkCtx {
	c.pins = append(slices.Clip(c.pins), pin{off, u})
	c.rangeOff = -1
	return c
}

type validator struct {
	p       *Plan
	parents []int
	errs    []error
}

func (v *validator) errorf(id NodeID, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("n%d: "+format, append([]any{id}, args...)...))
}

func (v *validator) child(from, to NodeID, ctx walkCtx) {
	if v.p.Node(to) == nil {
		v.errorf(from, "child n%d out of range", to)
		return
	}
	v.parents[to]++
	if v.parents[to] > 1 {
		return
	}
	v.walk(to, ctx)
}

func (v *validator) walk(id NodeID, ctx walkCtx) {
	n := v.p.Node(id)
	next := ctx
	next.parent = n.Kind

	switch n.Kind {
	case NodeNone:
		v.errorf(id, "node kind is unset")
	case NodeDefaultTarget:
	case NodeDirectTarget:
		if ctx.parent != NodeNullCheck {
			v.errorf(id, "direct target %q outside a null check", n.Direct.Target)
		}
	case NodeNullCheck:
		v.child(id, n.NullCheck.OnNull, next)
		v.child(id, n.NullCheck.NonNull, next)
	case NodeDowncast:
		v.child(id, n.Downcast.Fail, next)
		v.child(id, n.Downcast.Ok, next)
	case NodeLengthDispatch:
		ld := &n.LengthDispatch
		if ld.MinLen < 0 || len(ld.Table) == 0 {
			v.errorf(id, "empty length table [%d, +%d)", ld.MinLen, len(ld.Table))
		}
		for i, c := range ld.Table {
			sub := next
			sub.length = ld.MinLen + i
			v.child(id, c, sub)
		}
		v.child(id, ld.Else, next)
	case NodeCharProbe:
		v.checkProbe(id, n.CharProbe.Offset, ctx)
		cs := n.CharProbe.Cases
		if len(cs) == 0 {
			v.errorf(id, "char probe without cases")
		}
		for i, c := range cs {
			if i > 0 && cs[i-1].Unit >= c.Unit {
				v.errorf(id, "char cases not strictly ascending at %d", i)
			}
			if ctx.rangeOff == n.CharProbe.Offset && (c.Unit < ctx.unitLo || c.Unit > ctx.unitHi) {
				v.errorf(id, "unit %#x outside enclosing range [%#x, %#x]", c.Unit, ctx.unitLo, ctx.unitHi)
			}
			v.child(id, c.Next, next.pinned(n.CharProbe.Offset, c.Unit))
		}
		v.child(id, n.CharProbe.Else, next)
	case NodeRangeCompare:
		rc := &n.RangeCompare
		v.checkProbe(id, rc.Offset, ctx)
		low, high := next, next
		if ctx.rangeOff != rc.Offset {
			low.unitLo, low.unitHi = 0, math.MaxUint16
			high.unitLo, high.unitHi = 0, math.MaxUint16
		}
		low.rangeOff, high.rangeOff = rc.Offset, rc.Offset
		if rc.Pivot < low.unitLo || rc.Pivot >= low.unitHi {
			v.errorf(id, "pivot %#x does not split [%#x, %#x]", rc.Pivot, low.unitLo, low.unitHi)
		} else {
			low.unitHi = rc.Pivot
			high.unitLo = rc.Pivot + 1
		}
		v.child(id, rc.Low, low)
		v.child(id, rc.High, high)
	case NodeEqualityConfirm:
		v.checkConfirm(id, n.Equality.Key, n.Equality.Target, ctx)
		v.child(id, n.Equality.Else, next)
	case NodeHashDispatch:
		if ctx.inHash {
			v.errorf(id, "nested hash dispatch")
		}
		next.inHash = true
		v.child(id, n.HashDispatch.Root, next)
	case NodeHashRangeSplit:
		hs := &n.HashSplit
		if !ctx.inHash {
			v.errorf(id, "hash split outside hash dispatch")
		}
		p := uint64(hs.Pivot)
		if p < ctx.hashLo || p >= ctx.hashHi {
			v.errorf(id, "pivot %#x does not split [%#x, %#x]", hs.Pivot, ctx.hashLo, ctx.hashHi)
		}
		low, high := next, next
		low.hashHi = p
		high.hashLo = p + 1
		v.child(id, hs.Low, low)
		v.child(id, hs.High, high)
	case NodeHashEqual:
		he := &n.HashEqual
		if !ctx.inHash {
			v.errorf(id, "hash leaf outside hash dispatch")
		}
		h := uint64(he.Hash)
		if h < ctx.hashLo || h > ctx.hashHi {
			v.errorf(id, "hash %#x outside [%#x, %#x]", he.Hash, ctx.hashLo, ctx.hashHi)
		}
		if len(he.Confirms) == 0 {
			v.errorf(id, "hash leaf without candidates")
		}
		fn := v.p.hashFunc()
		for _, c := range he.Confirms {
			v.checkConfirm(id, c.Key, c.Target, ctx)
			if fn != nil && fn(c.Key) != he.Hash {
				v.errorf(id, "candidate %s hashes to %#x, leaf holds %#x", c.Key.Quote(), fn(c.Key), he.Hash)
			}
		}
		v.child(id, he.Else, next)
	default:
		v.errorf(id, "unknown node kind %d", n.Kind)
	}
}

func (v *validator) checkProbe(id NodeID, off int, ctx walkCtx) {
	if ctx.length < 0 {
		v.errorf(id, "code-unit probe at %d without a known length", off)
		return
	}
	if off < 0 || off >= ctx.length {
		v.errorf(id, "probe offset %d outside length %d", off, ctx.length)
	}
}

func (v *validator) checkConfirm(id NodeID, key cases.Key, target cases.Target, ctx walkCtx) {
	if target == cases.NoTarget {
		v.errorf(id, "confirmation %s without target", key.Quote())
	}
	if ctx.length >= 0 && key.Len() != ctx.length {
		v.errorf(id, "confirmation %s under length %d", key.Quote(), ctx.length)
		return
	}
	for _, pn := range ctx.pins {
		if pn.off >= key.Len() || key[pn.off] != pn.unit {
			v.errorf(id, "confirmation %s disagrees with probe [%d]=%s", key.Quote(), pn.off, cases.QuoteUnit(pn.unit))
		}
	}
	if ctx.rangeOff >= 0 && ctx.rangeOff < key.Len() {
		if u := key[ctx.rangeOff]; u < ctx.unitLo || u > ctx.unitHi {
			v.errorf(id, "confirmation %s outside range at %d", key.Quote(), ctx.rangeOff)
		}
	}
}
