package cases_test

import (
	"errors"
	"testing"

	"strswitch/internal/cases"
)

func TestLookupFirstMatch(t *testing.T) {
	tbl := &cases.Table{Default: "D"}
	tbl.Add("a", "A").Add("b", "B").Add("", "blank")

	tests := []struct {
		in   cases.Value
		want cases.Target
	}{
		{cases.Str("a"), "A"},
		{cases.Str("b"), "B"},
		{cases.Str("z"), "D"},
		{cases.Str(""), "blank"},
		{cases.Null(), "D"},
		{cases.Other(), "D"},
	}
	for _, tt := range tests {
		if got := tbl.Lookup(tt.in); got != tt.want {
			t.Errorf("Lookup(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	tbl.Null = "null1"
	if got := tbl.Lookup(cases.Null()); got != "null1" {
		t.Fatalf("null arm not taken: %q", got)
	}
	if got := tbl.Lookup(cases.Str("")); got != "blank" {
		t.Fatalf("blank conflated with null: %q", got)
	}
}

func TestValidate(t *testing.T) {
	tbl := &cases.Table{Default: "D"}
	tbl.Add("x", "X").Add("y", "Y")
	if err := cases.Validate(tbl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tbl.Add("x", "X2")
	err := cases.Validate(tbl)
	if !errors.Is(err, cases.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	missing := &cases.Table{}
	missing.Add("k", cases.NoTarget)
	err = cases.Validate(missing)
	if !errors.Is(err, cases.ErrMissingTarget) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
}

func TestLengths(t *testing.T) {
	tbl := &cases.Table{Default: "D"}
	if _, _, ok := tbl.Lengths(); ok {
		t.Fatalf("empty table reported lengths")
	}
	tbl.Add("four", "4").Add("no", "2").Add("yes", "3")
	lo, hi, ok := tbl.Lengths()
	if !ok || lo != 2 || hi != 4 {
		t.Fatalf("Lengths() = %d, %d, %v", lo, hi, ok)
	}
}

func TestKeyQuote(t *testing.T) {
	tests := []struct {
		key  cases.Key
		want string
	}{
		{cases.KeyOf("abc"), `"abc"`},
		{cases.KeyOf("a\"b"), `"a\"b"`},
		{cases.KeyOf("😀"), `"😀"`},
		{cases.Key{'a', 0xD800}, `"a\ud800"`},
		{cases.Key{0xDC00, 'b'}, `"\udc00b"`},
	}
	for _, tt := range tests {
		if got := tt.key.Quote(); got != tt.want {
			t.Errorf("Quote(%v) = %s, want %s", []uint16(tt.key), got, tt.want)
		}
	}
}

func TestNeedsNullCheck(t *testing.T) {
	plain := &cases.Table{Default: "D"}
	withNull := &cases.Table{Default: "D", Null: "N"}

	tests := []struct {
		s     cases.Scrutinee
		table *cases.Table
		want  bool
	}{
		{cases.Scrutinee{Kind: cases.KindOwnedString}, plain, false},
		{cases.Scrutinee{Kind: cases.KindOwnedString, Nullable: true}, plain, true},
		{cases.Scrutinee{Kind: cases.KindOwnedString}, withNull, true},
		{cases.Scrutinee{Kind: cases.KindNullable}, plain, true},
		{cases.Scrutinee{Kind: cases.KindCharSpan, Nullable: true}, withNull, false},
		{cases.Scrutinee{Kind: cases.KindObject, Nullable: true}, plain, true},
	}
	for _, tt := range tests {
		if got := tt.s.NeedsNullCheck(tt.table); got != tt.want {
			t.Errorf("%+v NeedsNullCheck = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestIndexing(t *testing.T) {
	ok, via := cases.AllCaps().Indexing(cases.KindOwnedString)
	if !ok || via {
		t.Fatalf("direct indexer expected, got ok=%v via=%v", ok, via)
	}
	caps := cases.AllCaps()
	caps.IndexedChar = false
	if ok, via := caps.Indexing(cases.KindOwnedString); !ok || !via {
		t.Fatalf("span conversion expected, got ok=%v via=%v", ok, via)
	}
	if ok, _ := caps.Indexing(cases.KindCharSpan); ok {
		t.Fatalf("span without indexer cannot be indexed")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []cases.Kind{cases.KindOwnedString, cases.KindCharSpan, cases.KindObject, cases.KindNullable} {
		got, err := cases.ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := cases.ParseKind("tuple"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
