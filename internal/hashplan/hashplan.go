// Package hashplan lowers a string switch by binary-searching the scrutinee's
// run-time hash. It is the fallback when length-based lowering is disabled or
// not profitable. The hash only filters: every leaf confirms full equality.
package hashplan

import (
	"fmt"
	"slices"

	"strswitch/internal/cases"
	"strswitch/internal/plan"
	"strswitch/internal/strhash"
)

// Entry pairs a case with its compile-time hash.
type Entry struct {
	Hash uint32
	Case cases.Case
	// Index is the case's position in the table.
	Index int
}

// Entries hashes every case and sorts by hash, keeping table order among equal hashes.
func Entries(cs []cases.Case, hash strhash.Func) []Entry {
	out := make([]Entry, len(cs))
	for i, c := range cs {
		out[i] = Entry{Hash: hash(c.Key), Case: c, Index: i}
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Hash < b.Hash:
			return -1
		case a.Hash > b.Hash:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Result describes the tree Build produced.
type Result struct {
	Root plan.NodeID
	// Distinct counts distinct hash values, i.e. leaves.
	Distinct int
	// Collisions counts cases sharing a leaf with an earlier case.
	Collisions int
	Nodes      int
}

type bucket struct {
	hash     uint32
	confirms []plan.Confirm
}

// Build appends a hash dispatch for cs to b. hash must compute exactly what the
// family's run-time routine computes; nil selects the family routine.
func Build(b *plan.Builder, cs []cases.Case, family strhash.Family, hash strhash.Func) (Result, error) {
	if len(cs) == 0 {
		return Result{}, fmt.Errorf("hashplan: no cases")
	}
	if hash == nil {
		hash = family.Func()
	}
	if hash == nil {
		return Result{}, fmt.Errorf("hashplan: no hash routine for family %s", family)
	}

	buckets := group(Entries(cs, hash))
	mark := b.Mark()
	root := b.HashDispatch(family, search(b, buckets))
	return Result{
		Root:       root,
		Distinct:   len(buckets),
		Collisions: len(cs) - len(buckets),
		Nodes:      b.Len() - mark,
	}, nil
}

// group folds sorted entries with equal hashes into one bucket, in table order.
func group(entries []Entry) []bucket {
	var out []bucket
	for _, e := range entries {
		c := plan.Confirm{Key: e.Case.Key, Target: e.Case.Target}
		if n := len(out); n > 0 && out[n-1].hash == e.Hash {
			out[n-1].confirms = append(out[n-1].confirms, c)
			continue
		}
		out = append(out, bucket{hash: e.Hash, confirms: []plan.Confirm{c}})
	}
	return out
}

// search builds a balanced comparison tree, pivoting on the median hash.
func search(b *plan.Builder, bs []bucket) plan.NodeID {
	if len(bs) == 1 {
		return b.HashEqual(bs[0].hash, bs[0].confirms, b.Default())
	}
	mid := len(bs) / 2
	low := search(b, bs[:mid])
	high := search(b, bs[mid:])
	return b.HashSplit(bs[mid-1].hash, low, high)
}
