package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"jsphp/internal/driver"
	"jsphp/internal/source"
	"jsphp/internal/ui"
)

type dirOutcome struct {
	fileSet *source.FileSet
	results []driver.TokenizeDirResult
	err     error
}

type dirRunner func(ctx context.Context, sink driver.ProgressSink) (*source.FileSet, []driver.TokenizeDirResult, error)

// runTokenizeWithUI runs fn in the background and renders its progress events
// until fn returns.
func runTokenizeWithUI(ctx context.Context, out io.Writer, title string, files []string, fn dirRunner) (*source.FileSet, []driver.TokenizeDirResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		fs, results, err := fn(ctx, driver.ChannelSink{Ch: events})
		outcomeCh <- dirOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// модель больше не читает канал; дочитываем, чтобы воркеры не блокировались
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
