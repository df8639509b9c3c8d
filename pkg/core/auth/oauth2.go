package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Params describes an OAuth2 token request.
type OAuth2Params struct {
	// Flow is the grant type: "client_credentials" or "password".
	Flow         string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// Username and Password are required for the password flow.
	Username string
	Password string
}

// FetchToken runs the requested OAuth2 flow and returns the token.
func FetchToken(ctx context.Context, params OAuth2Params) (*oauth2.Token, error) {
	if params.TokenURL == "" {
		return nil, fmt.Errorf("'token_url' is required")
	}
	if params.ClientID == "" {
		return nil, fmt.Errorf("'client_id' is required")
	}

	switch params.Flow {
	case "", "client_credentials":
		return clientCredentialsFlow(ctx, params)
	case "password":
		return passwordFlow(ctx, params)
	case "authorization_code":
		return nil, fmt.Errorf("authorization_code flow requires browser interaction; use client_credentials or password")
	default:
		return nil, fmt.Errorf("unknown flow '%s' (supported: client_credentials, password)", params.Flow)
	}
}

// clientCredentialsFlow is server-to-server authentication with the
// client's own id and secret.
func clientCredentialsFlow(ctx context.Context, params OAuth2Params) (*oauth2.Token, error) {
	config := clientcredentials.Config{
		ClientID:     params.ClientID,
		ClientSecret: params.ClientSecret,
		TokenURL:     params.TokenURL,
		Scopes:       params.Scopes,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("OAuth2 client_credentials flow failed: %w", err)
	}
	return token, nil
}

// passwordFlow exchanges the user's credentials for an access token.
func passwordFlow(ctx context.Context, params OAuth2Params) (*oauth2.Token, error) {
	if params.Username == "" {
		return nil, fmt.Errorf("'username' is required for password flow")
	}
	if params.Password == "" {
		return nil, fmt.Errorf("'password' is required for password flow")
	}

	config := oauth2.Config{
		ClientID:     params.ClientID,
		ClientSecret: params.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: params.TokenURL,
		},
		Scopes: params.Scopes,
	}

	token, err := config.PasswordCredentialsToken(ctx, params.Username, params.Password)
	if err != nil {
		return nil, fmt.Errorf("OAuth2 password flow failed: %w", err)
	}
	return token, nil
}
