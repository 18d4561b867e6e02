package plan

import (
	"fmt"

	"fortio.org/safecast"

	"strswitch/internal/cases"
	"strswitch/internal/strhash"
)

// Builder allocates plan nodes. Children are built before their parents, so ids
// handed out are final.
type Builder struct {
	nodes []Node
}

// NewBuilder creates a builder with room for capHint nodes.
func NewBuilder(capHint int) *Builder {
	return &Builder{nodes: make([]Node, 0, max(capHint, 0))}
}

// Len returns the number of allocated nodes.
func (b *Builder) Len() int { return len(b.nodes) }

// Mark returns a rollback point.
func (b *Builder) Mark() int { return len(b.nodes) }

// Rollback discards every node allocated since mark.
func (b *Builder) Rollback(mark int) {
	if mark < 0 || mark > len(b.nodes) {
		return
	}
	clear(b.nodes[mark:])
	b.nodes = b.nodes[:mark]
}

// Node returns an allocated node for inspection.
func (b *Builder) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(b.nodes) {
		return nil
	}
	return &b.nodes[id]
}

func (b *Builder) add(n Node) NodeID {
	id, err := safecast.Conv[int32](len(b.nodes))
	if err != nil {
		panic(fmt.Errorf("plan node overflow: %w", err))
	}
	b.nodes = append(b.nodes, n)
	return NodeID(id)
}

// Default allocates a leaf that yields the switch default. Each parent needs
// its own default leaf.
func (b *Builder) Default() NodeID {
	return b.add(Node{Kind: NodeDefaultTarget})
}

// Direct allocates a leaf that yields target.
func (b *Builder) Direct(target cases.Target) NodeID {
	return b.add(Node{Kind: NodeDirectTarget, Direct: DirectNode{Target: target}})
}

// NullCheck allocates a null test.
func (b *Builder) NullCheck(onNull, nonNull NodeID) NodeID {
	return b.add(Node{Kind: NodeNullCheck, NullCheck: NullCheckNode{OnNull: onNull, NonNull: nonNull}})
}

// Downcast allocates the object-to-string conversion test.
func (b *Builder) Downcast(fail, ok NodeID) NodeID {
	return b.add(Node{Kind: NodeDowncast, Downcast: DowncastNode{Fail: fail, Ok: ok}})
}

// LengthDispatch allocates a switch on length; table[i] handles length minLen+i.
func (b *Builder) LengthDispatch(minLen int, table []NodeID, els NodeID) NodeID {
	return b.add(Node{Kind: NodeLengthDispatch, LengthDispatch: LengthDispatchNode{MinLen: minLen, Table: table, Else: els}})
}

// CharProbe allocates a jump on the code unit at offset. cs must be sorted by unit.
func (b *Builder) CharProbe(offset int, cs []CharCase, els NodeID) NodeID {
	return b.add(Node{Kind: NodeCharProbe, CharProbe: CharProbeNode{Offset: offset, Cases: cs, Else: els}})
}

// RangeCompare allocates a two-way split on the code unit at offset.
func (b *Builder) RangeCompare(offset int, pivot uint16, low, high NodeID) NodeID {
	return b.add(Node{Kind: NodeRangeCompare, RangeCompare: RangeCompareNode{Offset: offset, Pivot: pivot, Low: low, High: high}})
}

// Equality allocates a full-key confirmation.
func (b *Builder) Equality(key cases.Key, target cases.Target, els NodeID) NodeID {
	return b.add(Node{Kind: NodeEqualityConfirm, Equality: EqualityNode{Key: key, Target: target, Else: els}})
}

// HashDispatch allocates the hash computation at the top of a hash tree.
func (b *Builder) HashDispatch(family strhash.Family, root NodeID) NodeID {
	return b.add(Node{Kind: NodeHashDispatch, HashDispatch: HashDispatchNode{Family: family, Root: root}})
}

// HashSplit allocates an inner node of the hash search tree.
func (b *Builder) HashSplit(pivot uint32, low, high NodeID) NodeID {
	return b.add(Node{Kind: NodeHashRangeSplit, HashSplit: HashSplitNode{Pivot: pivot, Low: low, High: high}})
}

// HashEqual allocates a hash leaf whose confirms are tried in order.
func (b *Builder) HashEqual(hash uint32, confirms []Confirm, els NodeID) NodeID {
	return b.add(Node{Kind: NodeHashEqual, HashEqual: HashEqualNode{Hash: hash, Confirms: confirms, Else: els}})
}

// Finish hands the arena to a plan rooted at entry. The builder must not be reused.
func (b *Builder) Finish(p *Plan, entry NodeID) *Plan {
	p.Nodes = b.nodes
	p.Entry = entry
	b.nodes = nil
	return p
}
