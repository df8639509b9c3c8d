package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const animFPS = 30

// newSpinner creates the dots spinner.
func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{
			".       ",
			"..      ",
			"...     ",
			"....    ",
			".....   ",
			"......  ",
			"....... ",
			"........",
		},
		FPS: time.Second / 5,
	}
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)
	return sp
}

// newModel creates the task model. cancel is called when the user
// interrupts.
func newModel(label string, cancel context.CancelFunc) Model {
	return Model{
		spinner:    newSpinner(),
		label:      label,
		cancel:     cancel,
		animSpring: harmonica.NewSpring(harmonica.FPS(animFPS), 4.0, 0.4),
		animTarget: 1,
	}
}

func animTick() tea.Cmd {
	return tea.Tick(time.Second/animFPS, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Init starts the spinner and the pulse animation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		animTick(),
	)
}
