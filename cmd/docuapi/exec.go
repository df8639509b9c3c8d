package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/tui"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/spf13/cobra"
)

var (
	execVars     []string
	execNoInput  bool
	execRemember bool
)

func init() {
	for _, c := range []*cobra.Command{execCmd, batchCmd} {
		c.Flags().StringArrayVarP(&execVars, "var", "v", nil, "variable value as name=value (repeatable)")
		c.Flags().BoolVar(&execNoInput, "no-input", false, "never prompt for missing variables")
	}
	execCmd.Flags().BoolVar(&execRemember, "remember", false, "store prompted credentials in the credential store")

	rootCmd.AddCommand(execCmd, batchCmd, variablesCmd)
}

// parseVars turns name=value pairs into a map.
func parseVars(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", p)
		}
		out[name] = value
	}
	return out, nil
}

var execCmd = &cobra.Command{
	Use:   "exec <api>",
	Short: "Execute a saved API",
	Long: `Execute a saved API by name, slug or YAML path. Values come from the
credential store and --var flags; anything still missing is asked for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		api, err := storage.FindAPI(core.APIsDir, args[0])
		if err != nil {
			return err
		}

		creds, err := a.creds.Values()
		if err != nil {
			return err
		}
		vars, err := parseVars(execVars)
		if err != nil {
			return err
		}

		if err := a.fillMissing(*api, creds, vars); err != nil {
			return err
		}

		var out core.Outcome
		err = tui.Run(cmd.Context(), "Ejecutando "+api.DisplayName(), func(ctx context.Context, _ tui.ProgressFunc) error {
			out = a.executor.Execute(ctx, *api, creds, vars)
			return nil
		})
		if err != nil {
			return err
		}
		return emit(tui.RenderOutcome(out), out)
	},
}

// fillMissing prompts for the variables of api that neither creds nor vars
// provide. Answers go into vars, and with --remember credential answers are
// also stored.
func (a *app) fillMissing(api storage.APIDescriptor, creds, vars map[string]string) error {
	merged := make(map[string]string, len(creds)+len(vars))
	for k, v := range creds {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}

	check := variables.ValidateVariables(api, merged)
	if check.Valid || execNoInput || !tui.Interactive() {
		return nil
	}

	cls := variables.NewClassifier(variables.DefaultKeywords())
	answers, err := tui.AskVariables(api.DisplayName(), check.Missing, cls)
	if err != nil {
		return err
	}
	for name, value := range answers {
		vars[name] = value
		if execRemember && cls.Kind(name) == variables.KindCredential {
			if err := a.creds.Set(name, value, variables.Description(name)); err != nil {
				return err
			}
		}
	}
	return nil
}

var batchCmd = &cobra.Command{
	Use:   "batch [api...]",
	Short: "Execute several saved APIs one after another",
	Long:  "Execute the named saved APIs in order, or every saved API when none is named.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		names := args
		if len(names) == 0 {
			if names, err = storage.ListAPIs(core.APIsDir); err != nil {
				return err
			}
		}

		apis := make([]storage.APIDescriptor, 0, len(names))
		for _, name := range names {
			api, err := storage.FindAPI(core.APIsDir, name)
			if err != nil {
				return err
			}
			apis = append(apis, *api)
		}

		creds, err := a.creds.Values()
		if err != nil {
			return err
		}
		vars, err := parseVars(execVars)
		if err != nil {
			return err
		}

		var res *core.BatchResult
		err = tui.Run(cmd.Context(), "Ejecutando lote", func(ctx context.Context, report tui.ProgressFunc) error {
			batch := core.NewBatch(a.executor,
				core.WithBatchDelay(a.cfg.Batch.Delay),
				core.WithBatchTimeout(a.cfg.Batch.Timeout),
				core.WithBatchLogger(a.log),
				core.WithProgress(func(done, total int, item core.BatchItem) {
					report(done, total, item.API)
				}),
			)
			var err error
			res, err = batch.Run(ctx, apis, creds, vars)
			return err
		})
		if err != nil {
			return err
		}
		return emit(tui.RenderBatch(res), res)
	},
}

var variablesCmd = &cobra.Command{
	Use:   "variables <api>",
	Short: "Show the variables a saved API needs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		api, err := storage.FindAPI(core.APIsDir, args[0])
		if err != nil {
			return err
		}
		creds, err := a.creds.Values()
		if err != nil {
			return err
		}

		names := variables.DetectAPIVariables(*api)
		report := struct {
			Variables      []string                   `json:"variables"`
			Classification variables.Classification   `json:"classification"`
			Validation     variables.ValidationResult `json:"validation"`
		}{
			Variables:      names,
			Classification: variables.Classify(names),
			Validation:     variables.ValidateVariables(*api, creds),
		}
		return emit(renderVariables(api.DisplayName(), report.Classification, creds), report)
	},
}

func renderVariables(apiName string, cls variables.Classification, stored map[string]string) string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Variables de " + apiName))
	b.WriteString("\n")

	section := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		b.WriteString(tui.LabelStyle.Render(title))
		b.WriteString("\n")
		for _, name := range names {
			line := tui.ItemPrefix + name + tui.DimStyle.Render("  "+variables.Description(name))
			if _, ok := stored[name]; ok {
				line += tui.SuccessStyle.Render("  (guardada)")
			}
			b.WriteString(line + "\n")
		}
	}
	section("Credenciales", cls.Credentials)
	section("Variables dinámicas", cls.DynamicVariables)
	section("Sin clasificar", cls.Unknown)

	if len(cls.Credentials)+len(cls.DynamicVariables)+len(cls.Unknown) == 0 {
		fmt.Fprintln(&b, tui.DimStyle.Render("  esta API no usa variables"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func warn(msg string) {
	fmt.Fprintln(os.Stderr, tui.WarnStyle.Render(tui.WarnPrefix+msg))
}
