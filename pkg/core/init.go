package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FolderName is the per-project state directory.
const FolderName = ".docuapi"

// Paths inside the state directory.
var (
	ConfigPath      = filepath.Join(FolderName, "config.json")
	CredentialsPath = filepath.Join(FolderName, "credentials.yaml")
	APIsDir         = filepath.Join(FolderName, "apis")
	PromptsDir      = filepath.Join(FolderName, "prompts")
)

// InitializeFolder creates the .docuapi directory under root with a default
// config.json the first time it runs. Later runs only make sure the
// subdirectories exist.
func InitializeFolder(root string) error {
	dir := filepath.Join(root, FolderName)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Println("🔧 Initializing .docuapi folder for the first time...")

		if err := os.Mkdir(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s folder: %w", FolderName, err)
		}

		if err := createDefaultConfig(filepath.Join(root, ConfigPath)); err != nil {
			return err
		}

		fmt.Println("✓ .docuapi folder initialized successfully!")
	}

	for _, sub := range []string{APIsDir, PromptsDir} {
		if err := ensureDir(filepath.Join(root, sub)); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	return nil
}

// createDefaultConfig writes the default settings. API keys are left empty
// and are usually supplied through the environment or .env.
func createDefaultConfig(path string) error {
	defaults := map[string]any{
		"anthropic_api_key": "",
		"google_api_key":    "",
		"default_model":     DefaultModel,
		"server": map[string]any{
			"port":            DefaultServerPort,
			"allowed_origins": DefaultAllowedOrigins,
			"rate_limit":      DefaultRateLimit,
			"rate_window":     DefaultRateWindow.String(),
		},
		"store": map[string]any{"driver": "memory"},
		"redis": map[string]any{"addr": "localhost:6379", "password": "", "db": 0},
		"log":   map[string]any{"level": "info", "format": "console"},
		"execution": map[string]any{
			"timeout": DefaultExecutionTimeout.String(),
		},
		"batch": map[string]any{
			"delay":   DefaultBatchDelay.String(),
			"timeout": DefaultBatchTimeout.String(),
		},
	}

	data, err := json.MarshalIndent(defaults, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
