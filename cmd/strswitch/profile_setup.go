package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strswitch/internal/prof"
)

// setupProfiling reads the persistent profiling flags and starts the
// requested profilers. The returned session is nil when none were asked for.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	cpuProfile, err := flags.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := flags.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := flags.GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	paths := prof.Paths{CPU: cpuProfile, Mem: memProfile, Trace: tracePath}
	if !paths.Active() {
		return nil, nil
	}
	return prof.Start(paths)
}
