package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"strswitch/internal/cases"
	"strswitch/internal/driver"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <table.switch.toml|directory>...",
		Short: "Plan each table under every strategy and verify the plans",
		Long: `Check plans each table as flat, length-based and hash-based, validates every
plan and compares it with a first-match scan on all keys and their near misses.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	paths, err := driver.CollectTables(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := &table{header: []string{"switch", "strategy", "planned", "nodes", "depth", "worst", "result"}}
	failed := 0
	var details []string
	for _, path := range paths {
		sw, err := driver.LoadTable(path, cfg.Planner)
		if err == nil {
			err = cases.Validate(sw.Request.Table)
		}
		if err != nil {
			failed++
			t.add(path, "-", "-", "-", "-", "-", failColor.Sprint("FAIL"))
			details = append(details, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		rep := driver.Check(sw)
		for _, c := range rep.Checks {
			result := passColor.Sprint("PASS")
			if c.Err != nil {
				result = failColor.Sprint("FAIL")
				details = append(details, fmt.Sprintf("%s/%s: %v", sw.Name, c.Requested, c.Err))
			}
			planned := c.Got.String()
			if c.Got != c.Requested {
				planned = warnColor.Sprint(planned)
			}
			t.add(sw.Name, c.Requested.String(), planned,
				strconv.Itoa(c.Stats.Nodes), strconv.Itoa(c.Stats.Depth), strconv.Itoa(c.WorstSteps), result)
		}
		if rep.Failed() {
			failed++
		}
	}
	if !quiet(cmd) || failed > 0 {
		if err := t.write(out); err != nil {
			return err
		}
	}
	writeDetails(cmd.ErrOrStderr(), details)
	if failed > 0 {
		return fmt.Errorf("%d of %d tables: %w", failed, len(paths), errFailed)
	}
	return nil
}

func writeDetails(w io.Writer, details []string) {
	for _, d := range details {
		fmt.Fprintln(w, d)
	}
}
