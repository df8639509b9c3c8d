package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the status line. It is cleared once the task ends.
func (m Model) View() string {
	if m.finished || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderPulse())
	b.WriteString(" ")
	b.WriteString(StatusStyle.Render(m.label))
	b.WriteString(" ")
	b.WriteString(m.spinner.View())

	if m.total > 0 {
		b.WriteString(DimStyle.Render(fmt.Sprintf(" %d/%d", m.done, m.total)))
		if m.current != "" {
			b.WriteString(DimStyle.Render(" · " + m.current))
		}
	}
	b.WriteString(DimStyle.Render("   esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// renderPulse colors the status dot by the spring position.
func (m Model) renderPulse() string {
	idx := int(m.animPos * float64(len(pulseColors)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(pulseColors) {
		idx = len(pulseColors) - 1
	}
	return lipgloss.NewStyle().Foreground(pulseColors[idx]).Render(PulseGlyph)
}
