package driver

import (
	"errors"
	"fmt"
	"math"

	"strswitch/internal/cases"
	"strswitch/internal/plan"
	"strswitch/internal/selector"
)

// StrategyCheck is the outcome of planning one table with one forced strategy.
type StrategyCheck struct {
	Requested plan.Strategy
	// Got differs from Requested when the strategy was not applicable, e.g. a
	// length-based request that was not profitable.
	Got   plan.Strategy
	Note  string
	Stats plan.Stats
	// WorstSteps is the largest number of nodes visited by any probe value.
	WorstSteps int
	Err        error
}

// CheckReport collects the per-strategy checks for one switch.
type CheckReport struct {
	Switch *Switch
	Checks []StrategyCheck
}

// Failed reports whether any strategy produced an invalid or non-equivalent plan.
func (r *CheckReport) Failed() bool {
	for _, c := range r.Checks {
		if c.Err != nil {
			return true
		}
	}
	return false
}

// Err joins the per-strategy failures.
func (r *CheckReport) Err() error {
	var errs []error
	for _, c := range r.Checks {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Requested, c.Err))
		}
	}
	return errors.Join(errs...)
}

// Check plans sw under each strategy and compares every plan with the
// first-match reference on the keys and on generated near misses.
func Check(sw *Switch) *CheckReport {
	rep := &CheckReport{Switch: sw}
	for _, s := range []plan.Strategy{plan.StrategyFlat, plan.StrategyLengthBased, plan.StrategyHashBased} {
		rep.Checks = append(rep.Checks, checkStrategy(sw.Request, s))
	}
	return rep
}

// ForceStrategy returns opts tuned so that selection prefers s. Selection still
// degrades when s needs a capability the scrutinee lacks or is not profitable.
func ForceStrategy(opts selector.Options, s plan.Strategy) selector.Options {
	switch s {
	case plan.StrategyFlat:
		opts.MinCases = math.MaxInt
	case plan.StrategyLengthBased:
		opts.MinCases = 0
		opts.DisableLengthBased = false
	case plan.StrategyHashBased:
		opts.MinCases = 0
		opts.DisableLengthBased = true
	}
	return opts
}

func checkStrategy(req selector.Request, s plan.Strategy) StrategyCheck {
	sc := StrategyCheck{Requested: s}
	req.Options = ForceStrategy(req.Options, s)

	p, err := selector.Select(req)
	if err != nil {
		sc.Err = err
		return sc
	}
	sc.Got, sc.Note = p.Strategy, p.Note
	sc.Stats = plan.Measure(p)
	if err := plan.Validate(p); err != nil {
		sc.Err = err
		return sc
	}
	if err := plan.CheckEquivalence(req.Table, p); err != nil {
		sc.Err = err
		return sc
	}
	for _, v := range plan.NearMisses(req.Table, req.Scrutinee.Kind) {
		r, err := plan.Eval(p, v)
		if err != nil {
			sc.Err = err
			return sc
		}
		sc.WorstSteps = max(sc.WorstSteps, r.Steps)
	}
	return sc
}

// Evaluate runs p on each input in order.
func Evaluate(p *plan.Plan, inputs []cases.Value) ([]plan.Result, error) {
	out := make([]plan.Result, 0, len(inputs))
	for _, v := range inputs {
		r, err := plan.Eval(p, v)
		if err != nil {
			return out, fmt.Errorf("%s: %w", v, err)
		}
		out = append(out, r)
	}
	return out, nil
}
