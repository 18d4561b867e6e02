package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"strswitch/internal/observ"
)

func timingsEnabled(cmd *cobra.Command) bool {
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && on
}

// printTimings writes the timer summary when --timings is set.
func printTimings(cmd *cobra.Command, out io.Writer, timer *observ.Timer) {
	if timer == nil || !timingsEnabled(cmd) {
		return
	}
	fmt.Fprint(out, timer.Summary())
}
