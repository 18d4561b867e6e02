package plan_test

import (
	"bytes"
	"strings"
	"testing"

	"strswitch/internal/cases"
	"strswitch/internal/plan"
	"strswitch/internal/strhash"
)

// buildABPlan builds: null check, then length 1 dispatch, then a probe on 'a'/'b'.
func buildABPlan() *plan.Plan {
	b := plan.NewBuilder(16)
	confA := b.Equality(cases.KeyOf("a"), "A", b.Default())
	confB := b.Equality(cases.KeyOf("b"), "B", b.Default())
	probe := b.CharProbe(0, []plan.CharCase{{Unit: 'a', Next: confA}, {Unit: 'b', Next: confB}}, b.Default())
	ld := b.LengthDispatch(1, []plan.NodeID{probe}, b.Default())
	root := b.NullCheck(b.Direct("N"), ld)
	return b.Finish(&plan.Plan{
		Strategy:  plan.StrategyLengthBased,
		Scrutinee: cases.Scrutinee{Kind: cases.KindNullable},
		Default:   "D",
	}, root)
}

func TestEvalLengthPlan(t *testing.T) {
	p := buildABPlan()
	if err := plan.Validate(p); err != nil {
		t.Fatalf("validate: %v", err)
	}
	tests := []struct {
		in   cases.Value
		want cases.Target
	}{
		{cases.Str("a"), "A"},
		{cases.Str("b"), "B"},
		{cases.Str("c"), "D"},
		{cases.Str(""), "D"},
		{cases.Str("ab"), "D"},
		{cases.Null(), "N"},
	}
	for _, tt := range tests {
		res, err := plan.Eval(p, tt.in)
		if err != nil {
			t.Fatalf("Eval(%s): %v", tt.in, err)
		}
		if res.Target != tt.want {
			t.Errorf("Eval(%s) = %q, want %q", tt.in, res.Target, tt.want)
		}
	}
}

func TestEvalHashLeafCollision(t *testing.T) {
	weak := func([]uint16) uint32 { return 7 }
	b := plan.NewBuilder(8)
	leaf := b.HashEqual(7, []plan.Confirm{
		{Key: cases.KeyOf("left"), Target: "L"},
		{Key: cases.KeyOf("right"), Target: "R"},
	}, b.Default())
	root := b.HashDispatch(strhash.FamilyString, leaf)
	p := b.Finish(&plan.Plan{Strategy: plan.StrategyHashBased, Default: "D", HashFamily: strhash.FamilyString, HashFunc: weak}, root)

	if err := plan.Validate(p); err != nil {
		t.Fatalf("validate: %v", err)
	}
	for in, want := range map[string]cases.Target{"left": "L", "right": "R", "other": "D"} {
		res, err := plan.Eval(p, cases.Str(in))
		if err != nil {
			t.Fatalf("Eval(%q): %v", in, err)
		}
		if res.Target != want {
			t.Errorf("Eval(%q) = %q, want %q", in, res.Target, want)
		}
	}
}

func TestValidateRejectsSharedChild(t *testing.T) {
	b := plan.NewBuilder(4)
	def := b.Default()
	x := b.Equality(cases.KeyOf("x"), "X", def)
	y := b.Equality(cases.KeyOf("y"), "Y", def)
	b.Default()
	root := b.NullCheck(x, y)
	p := b.Finish(&plan.Plan{Default: "D"}, root)
	err := plan.Validate(p)
	if err == nil {
		t.Fatalf("expected errors for shared and unreachable nodes")
	}
	for _, want := range []string{"shared by 2 parents", "n3: unreachable"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidateRejectsProbeWithoutLength(t *testing.T) {
	b := plan.NewBuilder(4)
	conf := b.Equality(cases.KeyOf("x"), "X", b.Default())
	root := b.CharProbe(0, []plan.CharCase{{Unit: 'x', Next: conf}}, b.Default())
	p := b.Finish(&plan.Plan{Default: "D"}, root)
	if err := plan.Validate(p); err == nil || !strings.Contains(err.Error(), "without a known length") {
		t.Fatalf("expected missing length error, got %v", err)
	}
}

func TestValidateRejectsInconsistentConfirm(t *testing.T) {
	b := plan.NewBuilder(8)
	conf := b.Equality(cases.KeyOf("b"), "B", b.Default())
	probe := b.CharProbe(0, []plan.CharCase{{Unit: 'a', Next: conf}}, b.Default())
	root := b.LengthDispatch(1, []plan.NodeID{probe}, b.Default())
	p := b.Finish(&plan.Plan{Default: "D"}, root)
	if err := plan.Validate(p); err == nil || !strings.Contains(err.Error(), "disagrees with probe") {
		t.Fatalf("expected probe disagreement, got %v", err)
	}
}

func TestValidateRejectsBareDirectTarget(t *testing.T) {
	b := plan.NewBuilder(4)
	root := b.LengthDispatch(1, []plan.NodeID{b.Direct("X")}, b.Default())
	p := b.Finish(&plan.Plan{Default: "D"}, root)
	if err := plan.Validate(p); err == nil || !strings.Contains(err.Error(), "outside a null check") {
		t.Fatalf("expected direct target error, got %v", err)
	}
}

func TestBuilderRollback(t *testing.T) {
	b := plan.NewBuilder(4)
	keep := b.Default()
	mark := b.Mark()
	b.Default()
	b.Equality(cases.KeyOf("x"), "X", keep)
	b.Rollback(mark)
	if b.Len() != 1 {
		t.Fatalf("Len after rollback = %d, want 1", b.Len())
	}
	if n := b.Node(keep); n == nil || n.Kind != plan.NodeDefaultTarget {
		t.Fatalf("kept node damaged: %+v", n)
	}
}

func TestMeasure(t *testing.T) {
	st := plan.Measure(buildABPlan())
	if st.Nodes != 10 {
		t.Errorf("Nodes = %d, want 10", st.Nodes)
	}
	// null_check -> length_dispatch -> char_probe -> confirm -> default
	if st.Depth != 5 {
		t.Errorf("Depth = %d, want 5", st.Depth)
	}
	if st.MaxOffset != 0 || st.CharProbes != 1 || st.Confirms != 2 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	if err := plan.Dump(&buf, buildABPlan()); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"plan length-based scrutinee=nullable default=D nodes=10",
		"null_check null -> n",
		"direct -> N",
		"length_dispatch [1..1]",
		"char_probe [0] {'a' -> n",
		`confirm "a" -> A else n`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want plan.Strategy
	}{
		{"flat", plan.StrategyFlat},
		{"length", plan.StrategyLengthBased},
		{"Length-Based", plan.StrategyLengthBased},
		{"hash", plan.StrategyHashBased},
		{"hash-based", plan.StrategyHashBased},
	}
	for _, tc := range tests {
		got, err := plan.ParseStrategy(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseStrategy(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := plan.ParseStrategy("jump-table"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestCheckEquivalence(t *testing.T) {
	tbl := &cases.Table{Default: "D", Null: "N"}
	tbl.Add("a", "A").Add("b", "B")
	if err := plan.CheckEquivalence(tbl, buildABPlan()); err != nil {
		t.Fatalf("matching table: %v", err)
	}

	tbl.Add("c", "C")
	err := plan.CheckEquivalence(tbl, buildABPlan())
	if err == nil || !strings.Contains(err.Error(), `reference chose "C"`) {
		t.Fatalf("err = %v, want a mismatch on c", err)
	}
	if err := plan.CheckEquivalence(nil, buildABPlan()); err == nil {
		t.Fatal("expected error for nil table")
	}
}

func TestNearMisses(t *testing.T) {
	tbl := (&cases.Table{Default: "D"}).Add("ab", "AB")
	// "", null, "ab", "bb", "ac", "a", "abx"
	if got := len(plan.NearMisses(tbl, cases.KindOwnedString)); got != 7 {
		t.Fatalf("string near misses = %d, want 7", got)
	}
	// spans drop null
	if got := len(plan.NearMisses(tbl, cases.KindCharSpan)); got != 6 {
		t.Fatalf("span near misses = %d, want 6", got)
	}
	// objects add a non-string value
	if got := len(plan.NearMisses(tbl, cases.KindObject)); got != 8 {
		t.Fatalf("object near misses = %d, want 8", got)
	}
}
