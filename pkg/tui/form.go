package tui

import (
	"errors"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/charmbracelet/huh"
)

var errRequired = errors.New("este valor es obligatorio")

// variablePrompt is one input of the missing-variables form.
type variablePrompt struct {
	Name        string
	Description string
	Placeholder string
	Secret      bool
}

// planVariablePrompts describes the inputs for names, credentials first.
func planVariablePrompts(names []string, cls *variables.Classifier) []variablePrompt {
	var creds, others []variablePrompt
	for _, name := range names {
		p := variablePrompt{
			Name:        name,
			Description: variables.Description(name),
			Placeholder: variables.Example(name),
		}
		if cls.Kind(name) == variables.KindCredential {
			p.Secret = true
			creds = append(creds, p)
		} else {
			others = append(others, p)
		}
	}
	return append(creds, others...)
}

// AskVariables asks the user for each missing variable of apiName.
// Credentials are typed with hidden input.
func AskVariables(apiName string, missing []string, cls *variables.Classifier) (map[string]string, error) {
	if len(missing) == 0 {
		return map[string]string{}, nil
	}
	if cls == nil {
		cls = variables.NewClassifier(variables.DefaultKeywords())
	}

	prompts := planVariablePrompts(missing, cls)
	answers := make([]string, len(prompts))
	fields := make([]huh.Field, 0, len(prompts))
	for i, p := range prompts {
		in := huh.NewInput().
			Title(p.Name).
			Description(p.Description).
			Placeholder(p.Placeholder).
			Validate(notBlank).
			Value(&answers[i])
		if p.Secret {
			in = in.EchoMode(huh.EchoModePassword)
		}
		fields = append(fields, in)
	}

	form := huh.NewForm(
		huh.NewGroup(fields...).
			Title("Variables para " + apiName).
			Description("Completa los valores que faltan para ejecutar la API"),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(prompts))
	for i, p := range prompts {
		out[p.Name] = strings.TrimSpace(answers[i])
	}
	return out, nil
}

// Confirm asks a yes/no question.
func Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Sí").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}
