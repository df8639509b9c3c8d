package main

import (
	"fmt"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/document"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/logger"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds the services shared by the commands.
type app struct {
	cfg      *core.Config
	log      *zap.Logger
	registry *llm.Registry
	store    storage.AnalysisStore
	analyzer *core.Analyzer
	executor *core.Executor
	creds    *storage.CredentialStore
}

// newApp initializes the .docuapi folder, loads the configuration and
// wires the services.
func newApp() (*app, error) {
	if err := core.InitializeFolder("."); err != nil {
		return nil, fmt.Errorf("error initializing config folder: %w", err)
	}
	// First run creates config.json after the initial read.
	_ = viper.ReadInConfig()

	cfg, err := core.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, err
	}

	claude := llm.NewClaudeClient(llm.DefaultClaudeBaseURL, cfg.AnthropicAPIKey)
	claude.Logger = log
	gemini := llm.NewGeminiClient(cfg.GoogleAPIKey)
	gemini.Logger = log
	registry := llm.NewDefaultRegistry(claude, gemini)

	store, err := storage.NewAnalysisStore(storage.StoreConfig{
		Driver: cfg.Store.Driver,
		Redis: storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	}, storage.WithStoreLogger(log))
	if err != nil {
		return nil, err
	}

	scraper := document.NewScraper(document.WithScraperLogger(log))

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		store:    store,
		analyzer: core.NewAnalyzer(registry, scraper, store,
			core.WithAnalyzerLogger(log),
			core.WithDefaultModel(cfg.DefaultModel),
		),
		executor: core.NewExecutor(
			core.WithExecutorLogger(log),
			core.WithExecutionTimeout(cfg.Execution.Timeout),
		),
		creds: storage.NewCredentialStore(core.CredentialsPath),
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	_ = a.log.Sync()
}
