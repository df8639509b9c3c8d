package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/variables"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_ProgressAndDone(t *testing.T) {
	m := newModel("Ejecutando lote", func() {})

	next, _ := m.Update(progressMsg{done: 1, total: 3, label: "Buscar"})
	m = next.(Model)
	assert.Equal(t, 1, m.done)
	assert.Equal(t, 3, m.total)
	assert.Contains(t, m.View(), "1/3")
	assert.Contains(t, m.View(), "Buscar")

	boom := errors.New("boom")
	next, cmd := m.Update(taskDoneMsg{err: boom})
	m = next.(Model)
	assert.True(t, m.finished)
	assert.Equal(t, boom, m.err)
	assert.Empty(t, m.View())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_InterruptCancels(t *testing.T) {
	cancelled := false
	m := newModel("Analizando", func() { cancelled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.True(t, m.cancelled)
	assert.True(t, cancelled)
	require.NotNil(t, cmd)

	next, _ = newModel("x", nil).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.False(t, next.(Model).cancelled)
}

func TestModel_PulseOscillates(t *testing.T) {
	m := newModel("x", nil)
	flipped := false
	for i := 0; i < 300; i++ {
		m = m.stepAnimation()
		if m.animTarget == 0 {
			flipped = true
			break
		}
	}
	assert.True(t, flipped)
	assert.Contains(t, m.renderPulse(), PulseGlyph)

	next, cmd := m.Update(animTickMsg(time.Now()))
	assert.NotNil(t, cmd)
	m = next.(Model)
	m.finished = true
	_, cmd = m.Update(animTickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestRunPlain(t *testing.T) {
	var buf bytes.Buffer
	err := runPlain(context.Background(), &buf, "Ejecutando", func(ctx context.Context, report ProgressFunc) error {
		report(1, 2, "uno")
		report(2, 2, "dos")
		return nil
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Ejecutando...")
	assert.Contains(t, out, "1/2 uno")
	assert.Contains(t, out, "2/2 dos")
}

func TestPlanVariablePrompts(t *testing.T) {
	cls := variables.NewClassifier(variables.DefaultKeywords())
	prompts := planVariablePrompts([]string{"codigo_postal", "ticket", "fecha_inicio"}, cls)

	require.Len(t, prompts, 3)
	assert.Equal(t, "ticket", prompts[0].Name)
	assert.True(t, prompts[0].Secret)
	assert.Equal(t, "F8537A18-6766-4DEF-9E59-426B4FEE2B44", prompts[0].Placeholder)
	assert.Equal(t, "codigo_postal", prompts[1].Name)
	assert.False(t, prompts[1].Secret)
	assert.Equal(t, "Fecha (formato: YYYY-MM-DD)", prompts[2].Description)

	assert.Error(t, notBlank("  "))
	assert.NoError(t, notBlank("x"))
}

func TestAskVariables_NothingMissing(t *testing.T) {
	out, err := AskVariables("Buscar", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderOutcome(t *testing.T) {
	out := RenderOutcome(core.Outcome{
		Success:      true,
		HumanMessage: "Se encontraron 2 elementos",
		Data: &core.ResponseData{
			Status:        200,
			StatusText:    "OK",
			ExecutionTime: 42,
			Data: []any{
				map[string]any{"id": float64(1), "nombre": "uno"},
				map[string]any{"id": float64(2)},
			},
		},
	})
	assert.Contains(t, out, "Se encontraron 2 elementos")
	assert.Contains(t, out, "HTTP 200 OK")
	assert.Contains(t, out, "42 ms")
	assert.Contains(t, out, "nombre")
	assert.Contains(t, out, "uno")

	out = RenderOutcome(core.Outcome{
		Failure: core.FailureMissingVariables,
		Error:   "Faltan variables requeridas",
		Missing: []string{"id", "api_key"},
	})
	assert.Contains(t, out, "Faltan variables requeridas")
	assert.Contains(t, out, "id, api_key")
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, RenderTable(nil))

	rows := make([]map[string]string, 25)
	for i := range rows {
		rows[i] = map[string]string{"id": "x", "desc": strings.Repeat("y", 60)}
	}
	out := RenderTable(&core.Table{Columns: []string{"desc", "id"}, Rows: rows})
	assert.Contains(t, out, "desc")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, strings.Repeat("y", 41))
	assert.Contains(t, out, "5 filas más")
}

func TestRenderBatch(t *testing.T) {
	out := RenderBatch(&core.BatchResult{
		Total: 2, Successful: 1, Failed: 1,
		Results: []core.BatchItem{
			{API: "uno", Index: 0, Outcome: core.Outcome{Success: true, HumanMessage: "ok"}},
			{API: "dos", Index: 1, Outcome: core.Outcome{Error: "falló"}},
		},
	})
	assert.Contains(t, out, "1/2 exitosas, 1 fallidas")
	assert.Contains(t, out, "[1] uno: ok")
	assert.Contains(t, out, "[2] dos: falló")
	assert.Empty(t, RenderBatch(nil))
}

func TestAnalysisMarkdown(t *testing.T) {
	rec := &storage.AnalysisRecord{
		ID:               "a-1",
		ModelUsed:        "gemini-2.5-flash",
		TokensUsed:       storage.TokenUsage{TotalTokens: 120},
		IsChunked:        true,
		DocumentMetadata: storage.DocumentMetadata{URL: "https://docs.example.com"},
		Analysis: storage.Analysis{
			Summary: "API de licitaciones",
			Credentials: []storage.CredentialMention{
				{Name: "ticket", Type: "token", IsCredential: true, Description: "Ticket | de acceso"},
			},
			APIs: []storage.AnalyzedAPI{{
				APIDescriptor: storage.APIDescriptor{Name: "Detalle", Method: "get", URL: "https://api.example.com/{{id}}"},
				Variables:     storage.APIVariables{Credentials: []string{"ticket"}, Dynamic: []string{"id"}},
			}},
		},
	}

	md := AnalysisMarkdown(rec)
	assert.Contains(t, md, "# Análisis a-1")
	assert.Contains(t, md, "API de licitaciones")
	assert.Contains(t, md, "https://docs.example.com")
	assert.Contains(t, md, "Documento fragmentado")
	assert.Contains(t, md, "| ticket | token | sí | Ticket \\| de acceso |")
	assert.Contains(t, md, "### 1. Detalle")
	assert.Contains(t, md, "`GET https://api.example.com/{{id}}`")
	assert.Contains(t, md, "- Variables: id")
}

func TestHighlightJSON_InvalidPassesThrough(t *testing.T) {
	assert.Equal(t, "not json", HighlightJSON("not json"))
	assert.Contains(t, HighlightJSON(`{"a":1}`), "a")
}
