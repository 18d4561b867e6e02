package plan

import (
	"fmt"

	"strswitch/internal/cases"
)

// Result is the outcome of running a plan on one value.
type Result struct {
	Target cases.Target
	// Steps counts visited nodes, the leaf included.
	Steps int
	// Confirms counts full-sequence comparisons.
	Confirms int
}

// Eval runs p on v the way emitted code would. A null or non-string value that
// reaches a probe without a guarding null check or downcast resolves to default,
// since such a value can never equal a case key.
func Eval(p *Plan, v cases.Value) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("nil plan")
	}
	var (
		res     Result
		hash    uint32
		hashed  bool
		visited = 0
	)
	id := p.Entry
	for {
		n := p.Node(id)
		if n == nil {
			return res, fmt.Errorf("n%d: node out of range", id)
		}
		res.Steps++
		visited++
		if visited > len(p.Nodes) {
			return res, fmt.Errorf("n%d: plan contains a cycle", id)
		}

		switch n.Kind {
		case NodeDefaultTarget:
			res.Target = p.Default
			return res, nil
		case NodeDirectTarget:
			res.Target = n.Direct.Target
			return res, nil
		case NodeNullCheck:
			if v.Kind == cases.ValueNull {
				id = n.NullCheck.OnNull
			} else {
				id = n.NullCheck.NonNull
			}
			continue
		case NodeDowncast:
			if v.Kind != cases.ValueChars {
				id = n.Downcast.Fail
			} else {
				id = n.Downcast.Ok
			}
			continue
		}

		if v.Kind != cases.ValueChars {
			res.Target = p.Default
			return res, nil
		}
		units := v.Units

		switch n.Kind {
		case NodeLengthDispatch:
			ld := &n.LengthDispatch
			idx := len(units) - ld.MinLen
			if idx < 0 || idx >= len(ld.Table) {
				id = ld.Else
			} else {
				id = ld.Table[idx]
			}
		case NodeCharProbe:
			cp := &n.CharProbe
			if cp.Offset >= len(units) {
				return res, fmt.Errorf("n%d: probe offset %d beyond length %d", id, cp.Offset, len(units))
			}
			id = cp.Else
			if c, ok := findCase(cp.Cases, units[cp.Offset]); ok {
				id = c.Next
			}
		case NodeRangeCompare:
			rc := &n.RangeCompare
			if rc.Offset >= len(units) {
				return res, fmt.Errorf("n%d: probe offset %d beyond length %d", id, rc.Offset, len(units))
			}
			if units[rc.Offset] <= rc.Pivot {
				id = rc.Low
			} else {
				id = rc.High
			}
		case NodeEqualityConfirm:
			res.Confirms++
			if n.Equality.Key.Equal(units) {
				res.Target = n.Equality.Target
				return res, nil
			}
			id = n.Equality.Else
		case NodeHashDispatch:
			if !hashed {
				fn := p.hashFunc()
				if fn == nil {
					return res, fmt.Errorf("n%d: no hash routine for family %s", id, n.HashDispatch.Family)
				}
				hash = fn(units)
				hashed = true
			}
			id = n.HashDispatch.Root
		case NodeHashRangeSplit:
			if !hashed {
				return res, fmt.Errorf("n%d: hash split before hash dispatch", id)
			}
			if hash <= n.HashSplit.Pivot {
				id = n.HashSplit.Low
			} else {
				id = n.HashSplit.High
			}
		case NodeHashEqual:
			if !hashed {
				return res, fmt.Errorf("n%d: hash leaf before hash dispatch", id)
			}
			he := &n.HashEqual
			if hash == he.Hash {
				for _, c := range he.Confirms {
					res.Confirms++
					if c.Key.Equal(units) {
						res.Target = c.Target
						return res, nil
					}
				}
			}
			id = he.Else
		default:
			return res, fmt.Errorf("n%d: unexpected node kind %s", id, n.Kind)
		}
	}
}

func findCase(cs []CharCase, u uint16) (CharCase, bool) {
	lo, hi := 0, len(cs)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cs[mid].Unit < u {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(cs) && cs[lo].Unit == u {
		return cs[lo], true
	}
	return CharCase{}, false
}
