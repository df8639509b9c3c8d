package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aymanbagabas/go-udiff"
	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	promptDiff string
	promptInit bool
)

func init() {
	promptCmd.Flags().StringVar(&promptDiff, "diff", "", "show a unified diff between the default prompt and this file")
	promptCmd.Flags().BoolVar(&promptInit, "init", false, "write the default prompt to .docuapi/prompts/default.md for editing")
	rootCmd.AddCommand(promptCmd, modelsCmd)
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the default extraction prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case promptInit:
			if err := core.InitializeFolder("."); err != nil {
				return err
			}
			path := filepath.Join(core.PromptsDir, "default.md")
			if err := os.WriteFile(path, []byte(llm.DefaultPrompt), 0644); err != nil {
				return fmt.Errorf("failed to write prompt: %w", err)
			}
			fmt.Println(tui.SuccessStyle.Render(tui.SuccessPrefix + "prompt escrito en " + path))
			return nil

		case promptDiff != "":
			custom, err := os.ReadFile(promptDiff)
			if err != nil {
				return fmt.Errorf("failed to read prompt: %w", err)
			}
			diff, err := promptUnifiedDiff(promptDiff, string(custom))
			if err != nil {
				return err
			}
			if diff == "" {
				fmt.Println(tui.DimStyle.Render("  sin diferencias con el prompt por defecto"))
				return nil
			}
			fmt.Print(diff)
			return nil
		}

		return emit(llm.DefaultPrompt, map[string]string{"prompt": llm.DefaultPrompt})
	},
}

// promptUnifiedDiff diffs the default prompt against custom.
func promptUnifiedDiff(name, custom string) (string, error) {
	edits := udiff.Strings(llm.DefaultPrompt, custom)
	unified, err := udiff.ToUnified("default", name, llm.DefaultPrompt, edits, 3)
	if err != nil {
		return "", fmt.Errorf("failed to build diff: %w", err)
	}
	return unified, nil
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available models",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		models := a.registry.Models()
		t := &core.Table{Columns: []string{"id", "name", "provider", "max tokens"}}
		for _, m := range models {
			id := m.ID
			if id == a.cfg.DefaultModel {
				id += " *"
			}
			t.Rows = append(t.Rows, map[string]string{
				"id":         id,
				"name":       m.Name,
				"provider":   m.Provider,
				"max tokens": strconv.Itoa(m.MaxTokens),
			})
		}
		return emit(tui.RenderTable(t), models)
	},
}
