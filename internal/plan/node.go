package plan

import (
	"strswitch/internal/cases"
	"strswitch/internal/strhash"
)

// NodeID indexes a node inside its plan.
type NodeID int32

// NoNodeID marks a missing child.
const NoNodeID NodeID = -1

// NodeKind enumerates plan node kinds.
type NodeKind uint8

const (
	// NodeNone is the zero kind; a valid plan never contains it.
	NodeNone NodeKind = iota
	// NodeNullCheck branches on a null scrutinee.
	NodeNullCheck
	// NodeDowncast converts an object scrutinee to a string once.
	NodeDowncast
	// NodeLengthDispatch jumps on scrutinee length through a dense table.
	NodeLengthDispatch
	// NodeCharProbe jumps on the code unit at a fixed offset.
	NodeCharProbe
	// NodeRangeCompare splits on the code unit at a fixed offset.
	NodeRangeCompare
	// NodeEqualityConfirm compares the whole scrutinee with a key.
	NodeEqualityConfirm
	// NodeDirectTarget branches without further tests.
	NodeDirectTarget
	// NodeDefaultTarget falls through to the switch default.
	NodeDefaultTarget
	// NodeHashDispatch computes the run-time hash once and enters the hash tree.
	NodeHashDispatch
	// NodeHashRangeSplit splits on the scrutinee hash.
	NodeHashRangeSplit
	// NodeHashEqual confirms candidates sharing one hash value.
	NodeHashEqual
)

func (k NodeKind) String() string {
	switch k {
	case NodeNullCheck:
		return "null_check"
	case NodeDowncast:
		return "downcast"
	case NodeLengthDispatch:
		return "length_dispatch"
	case NodeCharProbe:
		return "char_probe"
	case NodeRangeCompare:
		return "range_compare"
	case NodeEqualityConfirm:
		return "confirm"
	case NodeDirectTarget:
		return "direct"
	case NodeDefaultTarget:
		return "default"
	case NodeHashDispatch:
		return "hash_dispatch"
	case NodeHashRangeSplit:
		return "hash_split"
	case NodeHashEqual:
		return "hash_equal"
	default:
		return "none"
	}
}

// Node is a tagged union; only the payload matching Kind is meaningful.
type Node struct {
	Kind NodeKind

	NullCheck      NullCheckNode      `msgpack:",omitempty"`
	Downcast       DowncastNode       `msgpack:",omitempty"`
	LengthDispatch LengthDispatchNode `msgpack:",omitempty"`
	CharProbe      CharProbeNode      `msgpack:",omitempty"`
	RangeCompare   RangeCompareNode   `msgpack:",omitempty"`
	Equality       EqualityNode       `msgpack:",omitempty"`
	Direct         DirectNode         `msgpack:",omitempty"`
	HashDispatch   HashDispatchNode   `msgpack:",omitempty"`
	HashSplit      HashSplitNode      `msgpack:",omitempty"`
	HashEqual      HashEqualNode      `msgpack:",omitempty"`
}

// NullCheckNode routes a null scrutinee to OnNull before any other test.
type NullCheckNode struct {
	OnNull  NodeID
	NonNull NodeID
}

// DowncastNode tests the object once; the converted value is reused by every later probe.
type DowncastNode struct {
	Fail NodeID
	Ok   NodeID
}

// LengthDispatchNode maps lengths MinLen..MinLen+len(Table)-1 to Table entries.
// Lengths outside that span go to Else.
type LengthDispatchNode struct {
	MinLen int
	Table  []NodeID
	Else   NodeID
}

// CharCase is one arm of a CharProbeNode.
type CharCase struct {
	Unit uint16
	Next NodeID
}

// CharProbeNode is emitted as a jump table over Cases[0].Unit..Cases[len-1].Unit.
// Cases are sorted by Unit; units without a case go to Else.
type CharProbeNode struct {
	Offset int
	Cases  []CharCase
	Else   NodeID
}

// RangeCompareNode sends units <= Pivot to Low and the rest to High.
type RangeCompareNode struct {
	Offset int
	Pivot  uint16
	Low    NodeID
	High   NodeID
}

// EqualityNode confirms the whole scrutinee against Key. A match yields
// Target; anything else goes to Else.
type EqualityNode struct {
	Key    cases.Key
	Target cases.Target
	Else   NodeID
}

// DirectNode yields Target without another test. It only follows a null
// check, where no key comparison is needed.
type DirectNode struct {
	Target cases.Target
}

// HashDispatchNode computes the run-time hash with Family once and enters the
// hash search tree at Root.
type HashDispatchNode struct {
	Family strhash.Family
	Root   NodeID
}

// HashSplitNode sends hashes <= Pivot to Low and the rest to High.
type HashSplitNode struct {
	Pivot uint32
	Low   NodeID
	High  NodeID
}

// Confirm is one candidate of a hash leaf.
type Confirm struct {
	Key    cases.Key
	Target cases.Target
}

// HashEqualNode tries Confirms in order when the hash equals Hash.
type HashEqualNode struct {
	Hash     uint32
	Confirms []Confirm
	Else     NodeID
}

// Children returns the node's child ids in branch order.
func (n *Node) Children() []NodeID {
	switch n.Kind {
	case NodeNullCheck:
		return []NodeID{n.NullCheck.OnNull, n.NullCheck.NonNull}
	case NodeDowncast:
		return []NodeID{n.Downcast.Fail, n.Downcast.Ok}
	case NodeLengthDispatch:
		out := make([]NodeID, 0, len(n.LengthDispatch.Table)+1)
		out = append(out, n.LengthDispatch.Table...)
		return append(out, n.LengthDispatch.Else)
	case NodeCharProbe:
		out := make([]NodeID, 0, len(n.CharProbe.Cases)+1)
		for _, c := range n.CharProbe.Cases {
			out = append(out, c.Next)
		}
		return append(out, n.CharProbe.Else)
	case NodeRangeCompare:
		return []NodeID{n.RangeCompare.Low, n.RangeCompare.High}
	case NodeEqualityConfirm:
		return []NodeID{n.Equality.Else}
	case NodeHashDispatch:
		return []NodeID{n.HashDispatch.Root}
	case NodeHashRangeSplit:
		return []NodeID{n.HashSplit.Low, n.HashSplit.High}
	case NodeHashEqual:
		return []NodeID{n.HashEqual.Else}
	default:
		return nil
	}
}
