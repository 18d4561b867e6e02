package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"strswitch/internal/driver"
	"strswitch/internal/observ"
	"strswitch/internal/plan"
	"strswitch/internal/planio"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [flags] <table.switch.toml|directory>...",
		Short: "Plan every switch and print or export the plans",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlan,
	}
	cmd.Flags().String("emit", "text", "output form (text|msgpack|none)")
	cmd.Flags().String("out", "", "directory for msgpack plans (required with --emit=msgpack)")
	cmd.Flags().String("strategy", "", "prefer a strategy (flat|length|hash) instead of automatic selection")
	cmd.Flags().Bool("stats", false, "print a summary table of plan shapes")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("no-validate", false, "skip duplicate-key and missing-target checks")
	cmd.Flags().Bool("no-cache", false, "ignore the on-disk plan cache")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	emit, _ := cmd.Flags().GetString("emit")
	outDir, _ := cmd.Flags().GetString("out")
	strategyName, _ := cmd.Flags().GetString("strategy")
	showStats, _ := cmd.Flags().GetBool("stats")
	jobs, _ := cmd.Flags().GetInt("jobs")
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	uiValue, _ := cmd.Flags().GetString("ui")

	switch emit {
	case "text", "none":
	case "msgpack":
		if outDir == "" {
			return errUsage("--emit=msgpack needs --out")
		}
	default:
		return errUsage("invalid --emit %q (expected: text|msgpack|none)", emit)
	}

	mode, err := readUIMode(uiValue)
	if err != nil {
		return errUsage("%v", err)
	}

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
	cache, err := openCache(cfg, noCache)
	if err != nil {
		return fmt.Errorf("plan cache: %w", err)
	}
	paths, err := driver.CollectTables(args)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	runOpts := driver.Options{
		Planner:  opts,
		Jobs:     jobs,
		Validate: !noValidate,
		Cache:    cache,
		Timer:    timer,
	}
	var results []driver.Result
	if shouldUseTUI(mode, emit) && !quiet(cmd) {
		results, err = runPlanWithUI(cmd.Context(), cmd.OutOrStdout(), "plan", paths, runOpts)
	} else {
		results, err = driver.PlanAll(cmd.Context(), paths, runOpts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	failed := 0
	idx := timer.Begin("emit")
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "%s %s: %v\n", failColor.Sprint("FAIL"), r.Path, r.Err)
			continue
		}
		if err := emitPlan(out, emit, outDir, r); err != nil {
			return err
		}
	}
	timer.End(idx, emit)

	if showStats && !quiet(cmd) {
		if err := writeStats(out, results); err != nil {
			return err
		}
	}
	printTimings(cmd, stderr, timer)
	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(results), errFailed)
	}
	return nil
}

func emitPlan(out io.Writer, emit, outDir string, r driver.Result) error {
	switch emit {
	case "text":
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("switch"), r.Switch.Name)
		if err := plan.Dump(out, r.Plan); err != nil {
			return err
		}
		fmt.Fprintln(out)
	case "msgpack":
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		data, err := planio.Marshal(r.Switch.Name, r.Plan)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Path, err)
		}
		path := filepath.Join(outDir, r.Switch.Name+".plan.mp")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeStats(out io.Writer, results []driver.Result) error {
	t := &table{header: []string{"switch", "strategy", "cases", "nodes", "depth", "confirms", "cached"}}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		cached := ""
		if r.Cached {
			cached = "yes"
		}
		t.add(
			r.Switch.Name,
			r.Plan.Strategy.String(),
			strconv.Itoa(len(r.Switch.Request.Table.Cases)),
			strconv.Itoa(r.Stats.Nodes),
			strconv.Itoa(r.Stats.Depth),
			strconv.Itoa(r.Stats.Confirms),
			cached,
		)
	}
	return t.write(out)
}
