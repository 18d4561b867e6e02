package plan

// Stats summarizes the shape of a plan.
type Stats struct {
	Nodes     int
	// Depth is the longest chain of nodes from Entry to a leaf, the leaf included.
	Depth     int
	// MaxOffset is the largest code-unit offset probed, or -1.
	MaxOffset int
	// Confirms counts equality confirmations, hash leaf candidates included.
	Confirms  int

	CharProbes    int
	RangeCompares int
	HashLeaves    int
}

// Measure computes Stats for p.
func Measure(p *Plan) Stats {
	st := Stats{MaxOffset: -1}
	if p == nil || p.Node(p.Entry) == nil {
		return st
	}
	st.Nodes = len(p.Nodes)
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{p.Entry, 1}}
	seen := make([]bool, len(p.Nodes))
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := p.Node(f.id)
		if n == nil || seen[f.id] {
			continue
		}
		seen[f.id] = true
		st.Depth = max(st.Depth, f.depth)
		switch n.Kind {
		case NodeCharProbe:
			st.CharProbes++
			st.MaxOffset = max(st.MaxOffset, n.CharProbe.Offset)
		case NodeRangeCompare:
			st.RangeCompares++
			st.MaxOffset = max(st.MaxOffset, n.RangeCompare.Offset)
		case NodeEqualityConfirm:
			st.Confirms++
		case NodeHashEqual:
			st.HashLeaves++
			st.Confirms += len(n.HashEqual.Confirms)
		}
		for _, c := range n.Children() {
			stack = append(stack, frame{c, f.depth + 1})
		}
	}
	return st
}
