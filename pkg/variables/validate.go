package variables

import (
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

// ValidationResult lists which placeholders of a descriptor still lack a
// value.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Missing  []string `json:"missing"`
	Required []string `json:"required"`
}

// ValidateVariables checks that every placeholder in api has a non-blank
// value in values.
func ValidateVariables(api storage.APIDescriptor, values map[string]string) ValidationResult {
	required := DetectAPIVariables(api)
	missing := []string{}
	for _, name := range required {
		val, ok := values[name]
		if !ok || strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	return ValidationResult{
		Valid:    len(missing) == 0,
		Missing:  missing,
		Required: required,
	}
}
