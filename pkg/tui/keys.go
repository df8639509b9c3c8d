package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg lets the user interrupt the running task. Other keys are
// ignored.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m.handleInterrupt()
	}
	if msg.String() == "q" {
		return m.handleInterrupt()
	}
	return m, nil
}

// handleInterrupt cancels the task context and quits.
func (m Model) handleInterrupt() (tea.Model, tea.Cmd) {
	m.cancelled = true
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}
