package plan

import (
	"errors"
	"fmt"

	"strswitch/internal/cases"
)

// CheckEquivalence runs p on every key of tbl, on generated near misses and on
// extra, and compares each result with the first-match reference scan.
func CheckEquivalence(tbl *cases.Table, p *Plan, extra ...cases.Value) error {
	if tbl == nil || p == nil {
		return fmt.Errorf("nil table or plan")
	}
	var errs []error
	inputs := append(NearMisses(tbl, p.Scrutinee.Kind), extra...)
	for _, v := range inputs {
		want := tbl.Lookup(v)
		res, err := Eval(p, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", v, err))
			continue
		}
		if res.Target != want {
			errs = append(errs, fmt.Errorf("%s: plan chose %q, reference chose %q", v, res.Target, want))
		}
	}
	return errors.Join(errs...)
}

// NearMisses returns every key plus values that differ from a key in one
// place: each code unit bumped, one unit shorter, one unit longer. Null and
// the empty string are included; null is left out for spans, which cannot be
// null, and a non-string object is added for object scrutinees.
func NearMisses(tbl *cases.Table, kind cases.Kind) []cases.Value {
	out := []cases.Value{cases.Str("")}
	if kind != cases.KindCharSpan {
		out = append(out, cases.Null())
	}
	if kind == cases.KindObject {
		out = append(out, cases.Other())
	}
	for _, c := range tbl.Cases {
		k := c.Key
		out = append(out, cases.Units(k))
		for i := range k {
			bumped := append(cases.Key(nil), k...)
			bumped[i]++
			out = append(out, cases.Units(bumped))
		}
		if len(k) > 0 {
			out = append(out, cases.Units(append(cases.Key(nil), k[:len(k)-1]...)))
		}
		out = append(out, cases.Units(append(append(cases.Key(nil), k...), 'x')))
	}
	return out
}
