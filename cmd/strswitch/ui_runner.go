package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"strswitch/internal/driver"
	"strswitch/internal/ui"
)

type planOutcome struct {
	results []driver.Result
	err     error
}

// runPlanWithUI plans paths while a progress view renders to out.
func runPlanWithUI(ctx context.Context, out io.Writer, title string, paths []string, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.ProgressEvent, 256)
	outcomeCh := make(chan planOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		results, err := driver.PlanAll(ctx, paths, optsCopy)
		outcomeCh <- planOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// The view may stop early on error or cancellation; keep the planner unblocked.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
