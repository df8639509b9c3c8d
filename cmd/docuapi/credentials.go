package main

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/core/auth"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/tui"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/spf13/cobra"
)

var (
	credDescription string
	credShowValues  bool

	oauthName         string
	oauthFlow         string
	oauthTokenURL     string
	oauthClientID     string
	oauthClientSecret string
	oauthScopes       []string
	oauthUsername     string
	oauthPassword     string
)

func init() {
	credentialsSetCmd.Flags().StringVarP(&credDescription, "description", "d", "", "what the value is for")
	credentialsListCmd.Flags().BoolVar(&credShowValues, "show", false, "print values instead of masking them")

	f := credentialsOAuth2Cmd.Flags()
	f.StringVar(&oauthName, "name", "access_token", "credential name to store the token under")
	f.StringVar(&oauthFlow, "flow", "client_credentials", "grant type: client_credentials or password")
	f.StringVar(&oauthTokenURL, "token-url", "", "token endpoint URL")
	f.StringVar(&oauthClientID, "client-id", "", "OAuth2 client id")
	f.StringVar(&oauthClientSecret, "client-secret", "", "OAuth2 client secret")
	f.StringSliceVar(&oauthScopes, "scopes", nil, "scopes to request")
	f.StringVar(&oauthUsername, "username", "", "resource owner username (password flow)")
	f.StringVar(&oauthPassword, "password", "", "resource owner password (password flow)")
	_ = credentialsOAuth2Cmd.MarkFlagRequired("token-url")
	_ = credentialsOAuth2Cmd.MarkFlagRequired("client-id")

	credentialsCmd.AddCommand(credentialsListCmd, credentialsSetCmd, credentialsDeleteCmd, credentialsOAuth2Cmd)
	rootCmd.AddCommand(credentialsCmd)
}

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Manage stored credentials and variable values",
}

func credentialStore() *storage.CredentialStore {
	return storage.NewCredentialStore(core.CredentialsPath)
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := core.InitializeFolder("."); err != nil {
			return err
		}
		creds, err := credentialStore().List()
		if err != nil {
			return err
		}

		if !credShowValues {
			for i := range creds {
				creds[i].Value = mask(creds[i].Value)
			}
		}

		var b strings.Builder
		if len(creds) == 0 {
			b.WriteString(tui.DimStyle.Render("  no hay credenciales guardadas"))
		}
		for _, c := range creds {
			kind := "variable"
			if variables.IsCredential(c.Name) {
				kind = "credencial"
			}
			fmt.Fprintf(&b, "%s%s %s %s\n", tui.ItemPrefix, tui.LabelStyle.Render(c.Name), tui.DimStyle.Render("("+kind+")"), c.Value)
			if c.Description != "" {
				fmt.Fprintf(&b, "    %s\n", tui.DimStyle.Render(c.Description))
			}
		}
		return emit(strings.TrimRight(b.String(), "\n"), creds)
	},
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Store a value; {{env:VAR}} is resolved when used",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := core.InitializeFolder("."); err != nil {
			return err
		}
		desc := credDescription
		if desc == "" {
			desc = variables.Description(args[0])
		}
		if err := credentialStore().Set(args[0], args[1], desc); err != nil {
			return err
		}
		fmt.Println(tui.SuccessStyle.Render(tui.SuccessPrefix + "guardada " + args[0]))
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credentialStore().Delete(args[0]); err != nil {
			return err
		}
		fmt.Println(tui.SuccessStyle.Render(tui.SuccessPrefix + "eliminada " + args[0]))
		return nil
	},
}

var credentialsOAuth2Cmd = &cobra.Command{
	Use:   "oauth2",
	Short: "Fetch an OAuth2 access token and store it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := core.InitializeFolder("."); err != nil {
			return err
		}
		tok, err := auth.FetchToken(cmd.Context(), auth.OAuth2Params{
			Flow:         oauthFlow,
			TokenURL:     oauthTokenURL,
			ClientID:     oauthClientID,
			ClientSecret: oauthClientSecret,
			Scopes:       oauthScopes,
			Username:     oauthUsername,
			Password:     oauthPassword,
		})
		if err != nil {
			return fmt.Errorf("oauth2 token request failed: %w", err)
		}

		if err := credentialStore().Set(oauthName, tok.AccessToken, "OAuth2 access token ("+oauthFlow+")"); err != nil {
			return err
		}
		msg := "token guardado como " + oauthName
		if !tok.Expiry.IsZero() {
			msg += ", expira " + tok.Expiry.Format("2006-01-02 15:04:05")
		}
		fmt.Println(tui.SuccessStyle.Render(tui.SuccessPrefix + msg))
		if tok.RefreshToken != "" {
			if err := credentialStore().Set(oauthName+"_refresh", tok.RefreshToken, "OAuth2 refresh token"); err != nil {
				warn("no se pudo guardar el refresh token: " + err.Error())
			}
		}
		return nil
	},
}

// mask hides all but the last four characters of a value.
func mask(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
