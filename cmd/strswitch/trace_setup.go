package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"strswitch/internal/trace"
)

// setupTracing reads the trace flags and attaches a tracer to the command context.
func setupTracing(cmd *cobra.Command) (trace.Tracer, error) {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace without a level records one span per switch.
	if level == trace.LevelOff && output != "" {
		level = trace.LevelSwitch
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return trace.Nop, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	var w io.Writer
	if output == "" || output == "-" {
		w = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		Output:     w,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return tracer, nil
}

// finishTracing closes tr. When the command failed, events held in a ring are
// written to stderr first.
func finishTracing(root *cobra.Command, tr trace.Tracer, runErr error) {
	if tr == nil || !tr.Enabled() {
		return
	}
	stderr := root.ErrOrStderr()
	if runErr != nil {
		var ring *trace.RingTracer
		switch t := tr.(type) {
		case *trace.RingTracer:
			ring = t
		case *trace.MultiTracer:
			ring = t.Ring()
		}
		if ring != nil {
			fmt.Fprintln(stderr, "trace (most recent events):")
			if err := ring.Dump(stderr, trace.FormatText); err != nil {
				fmt.Fprintf(stderr, "trace: dump error: %v\n", err)
			}
		}
	}
	if err := tr.Close(); err != nil {
		fmt.Fprintf(stderr, "trace: close error: %v\n", err)
	}
}
