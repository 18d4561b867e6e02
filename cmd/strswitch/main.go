package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"strswitch/internal/prof"
	"strswitch/internal/trace"
	"strswitch/internal/version"
)

// app is one CLI invocation. Tests build a fresh app per run so that flag
// values do not leak between invocations.
type app struct {
	root    *cobra.Command
	tracer  trace.Tracer
	profile *prof.Session
}

func newApp() *app {
	a := &app{tracer: trace.Nop}
	root := &cobra.Command{
		Use:           "strswitch",
		Short:         "Plan the lowering of string switches",
		Long:          `strswitch turns case tables into length-probe, hash-search or flat decision plans for a code emitter`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("config", "", "path to strswitch.toml (default: search upward from the working directory)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|file|switch|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", trace.DefaultRingSize, "events kept by the ring tracer")
	flags.String("cpu-profile", "", "write CPU profile to file")
	flags.String("mem-profile", "", "write heap profile to file on exit")
	flags.String("runtime-trace", "", "write Go runtime trace to file")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := applyColor(cmd); err != nil {
			return err
		}
		tr, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		a.tracer = tr
		session, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		a.profile = session
		return nil
	}

	root.AddCommand(newPlanCmd(), newEvalCmd(), newCheckCmd(), newVersionCmd())
	a.root = root
	return a
}

// run executes args, stops profiling and closes the tracer, dumping its ring
// on failure.
func (a *app) run(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)
	if stopErr := a.profile.Stop(); stopErr != nil {
		fmt.Fprintf(a.root.ErrOrStderr(), "profiling: %v\n", stopErr)
	}
	finishTracing(a.root, a.tracer, err)
	return err
}

func main() {
	a := newApp()
	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		printError(a.root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func applyColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return errUsage("invalid --color %q (expected: auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
