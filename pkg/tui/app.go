// Package tui renders DocuAPI's terminal output: a spinner while the model
// or a batch is working, forms for missing variables, and styled results.
//
// File organization:
// - app.go: Entry points (Run, Interactive)
// - model.go: Model struct and message types
// - init.go: Model construction
// - update.go: Event handling and state updates
// - view.go: Status line rendering
// - keys.go: Keyboard input handling
// - styles.go: Colors and styles
// - highlight.go: JSON highlighting and markdown rendering
// - render.go: Outcome, batch, table and analysis rendering
// - form.go: Prompts for missing variables and confirmations
// - clipboard.go: Copying results
package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether stderr is a terminal. Spinners and forms are
// only shown when it is.
func Interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Run shows label with a spinner on stderr while task runs, and returns the
// task's error. Interrupting returns context.Canceled. Outside a terminal
// the task runs plainly with progress lines.
func Run(ctx context.Context, label string, task Task) error {
	if !Interactive() {
		return runPlain(ctx, os.Stderr, label, task)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newModel(label, cancel), tea.WithOutput(os.Stderr))

	go func() {
		err := task(ctx, func(done, total int, item string) {
			prog.Send(progressMsg{done: done, total: total, label: item})
		})
		prog.Send(taskDoneMsg{err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return err
	}
	m, ok := final.(Model)
	if !ok {
		return nil
	}
	if m.cancelled {
		return context.Canceled
	}
	return m.err
}

func runPlain(ctx context.Context, w io.Writer, label string, task Task) error {
	fmt.Fprintln(w, DimStyle.Render(label+"..."))
	return task(ctx, func(done, total int, item string) {
		fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("  %d/%d %s", done, total, item)))
	})
}
