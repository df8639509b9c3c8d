// Package auth builds authentication headers for API execution and fetches
// OAuth2 tokens for the credential store.
package auth

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

// BearerHeader wraps a token in the standard "Bearer <token>" format.
// A value that already carries the scheme is returned unchanged.
func BearerHeader(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return token
	}
	return fmt.Sprintf("Bearer %s", token)
}

// BasicHeader encodes username:password as an HTTP Basic header value.
func BasicHeader(username, password string) string {
	credentials := fmt.Sprintf("%s:%s", username, password)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// InjectCredentials adds auth headers for the descriptor's required
// credentials and returns the resulting header map. An existing header is
// kept only when its value already carries one of the required credential
// values, i.e. it was filled from a placeholder; literal stand-ins such as
// "Bearer YOUR_TOKEN" are replaced.
//
//   - names containing "bearer" or "token" set Authorization: Bearer <v>
//   - names containing both "api" and "key" set X-API-Key and Api-Key
//   - names containing "basic" with a user:pass value set Authorization: Basic
func InjectCredentials(headers storage.StringMap, required []string, values map[string]string) storage.StringMap {
	out := make(storage.StringMap, len(headers)+2)
	for k, v := range headers {
		out[k] = v
	}

	var supplied []string
	for _, name := range required {
		if v := strings.TrimSpace(values[name]); v != "" {
			supplied = append(supplied, v)
		}
	}

	for _, name := range required {
		value, ok := values[name]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		lower := strings.ToLower(name)

		switch {
		case strings.Contains(lower, "basic"):
			if user, pass, found := strings.Cut(value, ":"); found {
				setUnlessFilled(out, "Authorization", BasicHeader(user, pass), supplied)
			}
		case strings.Contains(lower, "bearer"), strings.Contains(lower, "token"):
			setUnlessFilled(out, "Authorization", BearerHeader(value), supplied)
		case strings.Contains(lower, "api") && strings.Contains(lower, "key"):
			setUnlessFilled(out, "X-API-Key", value, supplied)
			setUnlessFilled(out, "Api-Key", value, supplied)
		}
	}
	return out
}

// setUnlessFilled sets key, replacing any header with the same canonical
// name unless that header's value contains one of the supplied values.
func setUnlessFilled(headers storage.StringMap, key, value string, supplied []string) {
	canonical := http.CanonicalHeaderKey(key)
	for existing, current := range headers {
		if http.CanonicalHeaderKey(existing) != canonical {
			continue
		}
		for _, v := range supplied {
			if strings.Contains(current, v) {
				return
			}
		}
		delete(headers, existing)
	}
	headers[key] = value
}
