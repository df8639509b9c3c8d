package tui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/glamour"
)

// HighlightJSON pretty-prints and syntax-highlights a JSON document.
// Input that is not valid JSON is returned unchanged.
func HighlightJSON(input string) string {
	var js any
	if json.Unmarshal([]byte(input), &js) != nil {
		return input
	}
	return HighlightValue(js)
}

// HighlightValue renders an already decoded value as highlighted JSON.
func HighlightValue(v any) string {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```json\n")
	sb.Write(pretty)
	sb.WriteString("\n```")

	out := RenderMarkdown(sb.String(), 100)
	if out == sb.String() {
		return string(pretty)
	}
	return out
}

// RenderMarkdown renders md for the terminal, wrapping at width. When the
// renderer cannot be built the markdown is returned as is.
func RenderMarkdown(md string, width int) string {
	renderer, err := newGlamourRenderer(width)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// newGlamourRenderer creates a glamour renderer for markdown.
func newGlamourRenderer(width int) (*glamour.TermRenderer, error) {
	if width < 40 {
		width = 40
	}
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}
