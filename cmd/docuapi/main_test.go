package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVars(t *testing.T) {
	got, err := parseVars([]string{"id=7", "q=a=b", " fecha =2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "7", "q": "a=b", "fecha": "2025-01-01"}, got)

	for _, bad := range []string{"novalue", "=x"} {
		_, err := parseVars([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "***", mask("abc"))
	assert.Equal(t, "*****6789", mask("123456789"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://docs.example.com"))
	assert.True(t, isURL("http://localhost:8080/docs"))
	assert.False(t, isURL("docs/api.pdf"))
	assert.False(t, isURL("ftp://example.com"))
}

func TestPromptUnifiedDiff(t *testing.T) {
	diff, err := promptUnifiedDiff("mine.md", llm.DefaultPrompt)
	require.NoError(t, err)
	assert.Empty(t, diff)

	custom := strings.Replace(llm.DefaultPrompt, "Analiza", "Revisa", 1)
	diff, err = promptUnifiedDiff("mine.md", custom)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- default")
	assert.Contains(t, diff, "+++ mine.md")
	assert.Contains(t, diff, "-Analiza")
	assert.Contains(t, diff, "+Revisa")
}

func TestReadPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.md")
	require.NoError(t, os.WriteFile(path, []byte("solo {{CONTENT}}"), 0644))

	got, err := readPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "solo {{CONTENT}}", got)

	_, err = readPrompt(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestRenderVariables(t *testing.T) {
	cls := variables.Classify([]string{"ticket", "codigo"})
	out := renderVariables("Detalle", cls, map[string]string{"ticket": "x"})

	assert.Contains(t, out, "Variables de Detalle")
	assert.Contains(t, out, "Credenciales")
	assert.Contains(t, out, "ticket")
	assert.Contains(t, out, "(guardada)")
	assert.Contains(t, out, "Variables dinámicas")
	assert.Contains(t, out, "Código identificador")

	out = renderVariables("Vacía", variables.Classify(nil), nil)
	assert.Contains(t, out, "esta API no usa variables")
}
