package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/tui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile    string
	jsonOutput bool
	copyOutput bool
	rootCmd    = &cobra.Command{
		Use:   "docuapi",
		Short: "DocuAPI - turn API documentation into runnable requests",
		Long: `DocuAPI reads API documentation (PDF, DOCX, TXT or a web page), asks a
language model to extract the endpoints and credentials it describes, and
lets you execute those endpoints from the terminal or over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .docuapi/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of formatted output")
	rootCmd.PersistentFlags().BoolVar(&copyOutput, "copy", false, "also copy the result to the clipboard")
}

func initConfig() {
	// Load .env file if it exists (optional, warn if malformed)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(core.FolderName)
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	core.SetDefaults(viper.GetViper())
	_ = viper.ReadInConfig()
}

// emit prints either the formatted text or v as JSON. With --copy the JSON
// form goes to the clipboard.
func emit(formatted string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if jsonOutput {
		fmt.Println(string(data))
	} else {
		fmt.Println(formatted)
	}

	if copyOutput {
		if err := tui.Copy(string(data)); err != nil {
			fmt.Fprintln(os.Stderr, tui.WarnStyle.Render(tui.WarnPrefix+err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, tui.DimStyle.Render("  copiado al portapapeles"))
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
