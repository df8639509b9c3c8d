package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		m.current = msg.label

	case taskDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case animTickMsg:
		if m.finished || m.cancelled {
			return m, nil
		}
		m = m.stepAnimation()
		return m, animTick()
	}

	return m, nil
}

// stepAnimation advances the spring and flips its target once the dot is
// close to it, so the pulse keeps going back and forth.
func (m Model) stepAnimation() Model {
	m.animPos, m.animVel = m.animSpring.Update(m.animPos, m.animVel, m.animTarget)
	if math.Abs(m.animPos-m.animTarget) < 0.05 && math.Abs(m.animVel) < 0.5 {
		m.animTarget = 1 - m.animTarget
	}
	return m
}
