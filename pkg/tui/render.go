package tui

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	maxTableRows  = 20
	maxCellLength = 40
)

// RenderOutcome renders an execution outcome: status line, HTTP summary and
// a preview of the payload.
func RenderOutcome(out core.Outcome) string {
	var b strings.Builder

	msg := out.HumanMessage
	if msg == "" {
		msg = out.Error
	}
	if out.Success {
		b.WriteString(SuccessStyle.Render(SuccessPrefix + msg))
	} else {
		b.WriteString(ErrorStyle.Render(ErrorPrefix + msg))
	}
	b.WriteString("\n")

	if len(out.Missing) > 0 {
		b.WriteString(WarnStyle.Render(WarnPrefix + "Faltan variables: " + strings.Join(out.Missing, ", ")))
		b.WriteString("\n")
	}

	if out.Data == nil {
		return b.String()
	}

	if out.Data.Status > 0 {
		b.WriteString(DimStyle.Render(fmt.Sprintf("    HTTP %d %s · %d ms", out.Data.Status, out.Data.StatusText, out.Data.ExecutionTime)))
		b.WriteString("\n")
	}
	if out.Data.Details != "" {
		b.WriteString(DimStyle.Render("    " + out.Data.Details))
		b.WriteString("\n")
	}

	if t := core.FormatAsTable(out.Data.Data); t != nil {
		b.WriteString(RenderTable(t))
		b.WriteString("\n")
	} else if out.Data.KeyData != nil {
		b.WriteString(HighlightValue(out.Data.KeyData))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable draws t with a lipgloss table. Long cells are cut and only
// the first rows are shown.
func RenderTable(t *core.Table) string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		Headers(t.Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})

	for i, row := range t.Rows {
		if i == maxTableRows {
			break
		}
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = truncate(row[col], maxCellLength)
		}
		tbl.Row(cells...)
	}

	out := tbl.Render()
	if extra := len(t.Rows) - maxTableRows; extra > 0 {
		out += "\n" + DimStyle.Render(fmt.Sprintf("  ... %d filas más", extra))
	}
	return out
}

// RenderBatch renders a batch summary followed by one line per item.
func RenderBatch(res *core.BatchResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	summary := fmt.Sprintf("Lote completado: %d/%d exitosas", res.Successful, res.Total)
	if res.Failed > 0 {
		b.WriteString(WarnStyle.Render(summary + fmt.Sprintf(", %d fallidas", res.Failed)))
	} else {
		b.WriteString(SuccessStyle.Render(summary))
	}
	b.WriteString("\n")

	for _, item := range res.Results {
		msg := item.HumanMessage
		if msg == "" {
			msg = item.Error
		}
		line := fmt.Sprintf("[%d] %s: %s", item.Index+1, item.API, msg)
		if item.Success {
			b.WriteString(SuccessStyle.Render(SuccessPrefix + line))
		} else {
			b.WriteString(ErrorStyle.Render(ErrorPrefix + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// AnalysisMarkdown describes an analysis as markdown.
func AnalysisMarkdown(rec *storage.AnalysisRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Análisis %s\n\n", rec.ID)
	if rec.Analysis.Summary != "" {
		b.WriteString(rec.Analysis.Summary + "\n\n")
	}

	source := rec.DocumentMetadata.OriginalName
	if source == "" {
		source = rec.DocumentMetadata.URL
	}
	fmt.Fprintf(&b, "*Fuente:* %s · *Modelo:* %s · *Tokens:* %d", source, rec.ModelUsed, rec.TokensUsed.TotalTokens)
	if rec.IsChunked {
		b.WriteString(" · *Documento fragmentado*")
	}
	b.WriteString("\n\n")

	if len(rec.Analysis.Credentials) > 0 {
		b.WriteString("## Credenciales\n\n")
		b.WriteString("| Nombre | Tipo | Credencial | Descripción |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, cr := range rec.Analysis.Credentials {
			kind := "no"
			if cr.IsCredential {
				kind = "sí"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cr.Name, cr.Type, kind, escapeCell(cr.Description))
		}
		b.WriteString("\n")
	}

	if len(rec.Analysis.APIs) > 0 {
		b.WriteString("## APIs\n\n")
		for i, api := range rec.Analysis.APIs {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, api.DisplayName())
			fmt.Fprintf(&b, "`%s %s`\n\n", strings.ToUpper(api.Method), api.URL)
			if api.Description != "" {
				b.WriteString(api.Description + "\n\n")
			}
			if len(api.Variables.Credentials) > 0 {
				fmt.Fprintf(&b, "- Credenciales: %s\n", strings.Join(api.Variables.Credentials, ", "))
			}
			if len(api.Variables.Dynamic) > 0 {
				fmt.Fprintf(&b, "- Variables: %s\n", strings.Join(api.Variables.Dynamic, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderAnalysis renders AnalysisMarkdown for the terminal.
func RenderAnalysis(rec *storage.AnalysisRecord, width int) string {
	return RenderMarkdown(AnalysisMarkdown(rec), width)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}
