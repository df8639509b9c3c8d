package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/harmonica"
)

// ProgressFunc publishes progress of a running task. label names the item
// just finished and may be empty.
type ProgressFunc func(done, total int, label string)

// Task is long-running work shown behind a spinner.
type Task func(ctx context.Context, report ProgressFunc) error

// Model is the Bubble Tea model shown while a task runs: a spinner, a
// pulsing status dot and, for batches, an item counter.
type Model struct {
	spinner spinner.Model
	label   string
	width   int

	done    int
	total   int
	current string

	finished  bool
	cancelled bool
	err       error
	cancel    context.CancelFunc

	// Animation state (harmonica spring for the pulsing dot)
	animSpring harmonica.Spring
	animPos    float64
	animVel    float64
	animTarget float64
}

// progressMsg carries a ProgressFunc call into the program
type progressMsg struct {
	done  int
	total int
	label string
}

// taskDoneMsg signals the task returned
type taskDoneMsg struct {
	err error
}

// animTickMsg drives the harmonica spring animation
type animTickMsg time.Time
