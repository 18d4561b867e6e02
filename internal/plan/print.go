package plan

import (
	"fmt"
	"io"
	"strings"

	"strswitch/internal/cases"
)

// Dump writes a human-readable representation of p, one node per line in
// depth-first order from Entry.
func Dump(w io.Writer, p *Plan) error {
	if w == nil || p == nil {
		return nil
	}
	header := fmt.Sprintf("plan %s scrutinee=%s", p.Strategy, p.Scrutinee.Kind)
	if p.Scrutinee.Nullable {
		header += "?"
	}
	header += fmt.Sprintf(" default=%s nodes=%d", p.Default, len(p.Nodes))
	if p.HashFamily != 0 {
		header += " hash=" + p.HashFamily.Routine()
	}
	if p.IndexViaSpan {
		header += " index=as_span"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if p.Note != "" {
		if _, err := fmt.Fprintf(w, "  // %s\n", p.Note); err != nil {
			return err
		}
	}

	seen := make([]bool, len(p.Nodes))
	stack := []NodeID{p.Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := p.Node(id)
		if n == nil || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := fmt.Fprintf(w, "  n%d: %s\n", id, FormatNode(n)); err != nil {
			return err
		}
		kids := n.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return nil
}

// FormatNode renders a single node.
func FormatNode(n *Node) string {
	switch n.Kind {
	case NodeDefaultTarget:
		return "default"
	case NodeDirectTarget:
		return fmt.Sprintf("direct -> %s", n.Direct.Target)
	case NodeNullCheck:
		return fmt.Sprintf("null_check null -> n%d else n%d", n.NullCheck.OnNull, n.NullCheck.NonNull)
	case NodeDowncast:
		return fmt.Sprintf("downcast ok -> n%d else n%d", n.Downcast.Ok, n.Downcast.Fail)
	case NodeLengthDispatch:
		ld := &n.LengthDispatch
		parts := make([]string, len(ld.Table))
		for i, c := range ld.Table {
			parts[i] = fmt.Sprintf("%d -> n%d", ld.MinLen+i, c)
		}
		return fmt.Sprintf("length_dispatch [%d..%d] {%s} else n%d",
			ld.MinLen, ld.MinLen+len(ld.Table)-1, strings.Join(parts, ", "), ld.Else)
	case NodeCharProbe:
		cp := &n.CharProbe
		parts := make([]string, len(cp.Cases))
		for i, c := range cp.Cases {
			parts[i] = fmt.Sprintf("%s -> n%d", cases.QuoteUnit(c.Unit), c.Next)
		}
		return fmt.Sprintf("char_probe [%d] {%s} else n%d", cp.Offset, strings.Join(parts, ", "), cp.Else)
	case NodeRangeCompare:
		rc := &n.RangeCompare
		return fmt.Sprintf("range_compare [%d] <= %s -> n%d else n%d", rc.Offset, cases.QuoteUnit(rc.Pivot), rc.Low, rc.High)
	case NodeEqualityConfirm:
		return fmt.Sprintf("confirm %s -> %s else n%d", n.Equality.Key.Quote(), n.Equality.Target, n.Equality.Else)
	case NodeHashDispatch:
		return fmt.Sprintf("hash_dispatch %s -> n%d", n.HashDispatch.Family.Routine(), n.HashDispatch.Root)
	case NodeHashRangeSplit:
		return fmt.Sprintf("hash_split <= %#08x -> n%d else n%d", n.HashSplit.Pivot, n.HashSplit.Low, n.HashSplit.High)
	case NodeHashEqual:
		he := &n.HashEqual
		parts := make([]string, len(he.Confirms))
		for i, c := range he.Confirms {
			parts[i] = fmt.Sprintf("%s -> %s", c.Key.Quote(), c.Target)
		}
		return fmt.Sprintf("hash_equal %#08x {%s} else n%d", he.Hash, strings.Join(parts, "; "), he.Else)
	default:
		return n.Kind.String()
	}
}
