package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Minimal color palette
var (
	DimColor     = lipgloss.Color("#6c6c6c")
	TextColor    = lipgloss.Color("#e0e0e0")
	AccentColor  = lipgloss.Color("#7aa2f7")
	ErrorColor   = lipgloss.Color("#f7768e")
	SuccessColor = lipgloss.Color("#9ece6a")
	WarnColor    = lipgloss.Color("#e0af68")
)

// pulseColors go from dim to accent; the harmonica spring picks one.
var pulseColors = []lipgloss.Color{"#3b4261", "#565f89", "#7aa2f7", "#9ab8ff"}

// Output styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarnStyle = lipgloss.NewStyle().
			Foreground(WarnColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimColor)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1)

	TableBorderStyle = lipgloss.NewStyle().
				Foreground(DimColor)
)

// Line prefixes
const (
	SuccessPrefix = "  ✓ "
	ErrorPrefix   = "  ✗ "
	WarnPrefix    = "  ! "
	ItemPrefix    = "  • "
	PulseGlyph    = "●"
)
