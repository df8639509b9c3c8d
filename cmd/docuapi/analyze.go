package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	analyzeModel  string
	analyzePrompt string
	analyzeSave   bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "model id (see 'docuapi models')")
	analyzeCmd.Flags().StringVarP(&analyzePrompt, "prompt", "p", "", "file with a custom prompt; {{CONTENT}} marks where the document goes")
	analyzeCmd.Flags().BoolVarP(&analyzeSave, "save", "s", false, "save the extracted APIs to .docuapi/apis")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url>",
	Short: "Extract APIs and credentials from a document or web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		customPrompt, err := readPrompt(analyzePrompt)
		if err != nil {
			return err
		}

		source := args[0]
		var rec *storage.AnalysisRecord
		err = tui.Run(cmd.Context(), "Analizando "+source, func(ctx context.Context, _ tui.ProgressFunc) error {
			var err error
			if isURL(source) {
				rec, err = a.analyzer.AnalyzeURL(ctx, source, analyzeModel, customPrompt)
				return err
			}
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", source, err)
			}
			rec, err = a.analyzer.AnalyzeDocument(ctx, filepath.Base(source), data, analyzeModel, customPrompt)
			return err
		})
		if err != nil {
			return err
		}

		if analyzeSave {
			if err := saveAPIs(rec); err != nil {
				return err
			}
		}
		return emit(tui.RenderAnalysis(rec, 100), rec)
	},
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readPrompt loads a custom prompt file. An empty path falls back to
// .docuapi/prompts/default.md when it exists.
func readPrompt(path string) (string, error) {
	if path == "" {
		path = filepath.Join(core.PromptsDir, "default.md")
		if _, err := os.Stat(path); err != nil {
			return "", nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	return string(data), nil
}

func saveAPIs(rec *storage.AnalysisRecord) error {
	for _, api := range rec.Analysis.APIs {
		path, err := storage.SaveAPI(core.APIsDir, api.APIDescriptor)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, tui.SuccessStyle.Render(tui.SuccessPrefix+"guardada "+path))
	}
	return nil
}
