package core

import (
	"net/url"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// APIValidation is a pre-flight check of a descriptor.
type APIValidation struct {
	IsValid  bool     `json:"isValid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// ValidateAPI checks that a descriptor has an absolute URL and a known
// method, and warns about descriptors with no headers or credentials.
func ValidateAPI(api storage.APIDescriptor) APIValidation {
	issues := []string{}
	warnings := []string{}

	if u, err := url.Parse(api.URL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, "URL inválida o mal formada")
	}

	if !validMethods[strings.ToUpper(strings.TrimSpace(api.Method))] {
		issues = append(issues, "Método HTTP inválido")
	}

	if len(api.Headers) == 0 {
		warnings = append(warnings, "No se especificaron headers")
	}
	if len(api.RequiredCredentials) == 0 {
		warnings = append(warnings, "No se requieren credenciales para esta API")
	}

	return APIValidation{
		IsValid:  len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
	}
}
