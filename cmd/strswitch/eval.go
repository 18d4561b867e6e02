package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"strswitch/internal/cases"
	"strswitch/internal/driver"
	"strswitch/internal/plan"
	"strswitch/internal/selector"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [flags] <table.switch.toml> <input>...",
		Short: "Run a plan on sample inputs",
		Long: `Plans one table and runs the plan on each input, printing the chosen target,
the number of nodes visited and the number of full comparisons.

Inputs: null, <object>, units:d800,41 for raw code units, a Go-quoted string,
or any other text taken literally.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runEval,
	}
	cmd.Flags().String("strategy", "", "prefer a strategy (flat|length|hash)")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	strategyName, _ := cmd.Flags().GetString("strategy")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := cfg.Planner
	if strategyName != "" {
		s, err := plan.ParseStrategy(strategyName)
		if err != nil {
			return errUsage("%v", err)
		}
		opts = driver.ForceStrategy(opts, s)
	}

	sw, err := driver.LoadTable(args[0], opts)
	if err != nil {
		return err
	}
	inputs := make([]cases.Value, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := driver.ParseInput(a)
		if err != nil {
			return errUsage("%v", err)
		}
		inputs = append(inputs, v)
	}

	p, err := selector.Select(sw.Request)
	if err != nil {
		return err
	}
	results, err := driver.Evaluate(p, inputs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet(cmd) {
		fmt.Fprintf(out, "%s %s: %s", labelColor.Sprint("switch"), sw.Name, p.Strategy)
		if p.Note != "" {
			fmt.Fprintf(out, " (%s)", p.Note)
		}
		fmt.Fprintln(out)
	}
	t := &table{header: []string{"input", "target", "steps", "confirms"}}
	mismatches := 0
	for i, r := range results {
		target := string(r.Target)
		if want := sw.Request.Table.Lookup(inputs[i]); want != r.Target {
			mismatches++
			target += " " + warnColor.Sprintf("(reference: %s)", want)
		}
		t.add(inputs[i].String(), target, strconv.Itoa(r.Steps), strconv.Itoa(r.Confirms))
	}
	if err := t.write(out); err != nil {
		return err
	}
	if mismatches > 0 {
		return fmt.Errorf("%d inputs disagree with the reference scan: %w", mismatches, errFailed)
	}
	return nil
}
