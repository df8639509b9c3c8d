// Package server exposes document analysis and API execution over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/logger"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request size ceilings.
const (
	MaxJSONBody   = 50 << 20
	MaxUploadBody = 100 << 20
)

const shutdownTimeout = 10 * time.Second

// ModelLister lists the selectable models. *llm.Registry implements it.
type ModelLister interface {
	Models() []llm.Model
}

// Options tunes the server. Zero port, origins and window fall back to the
// core defaults; a zero batch delay or timeout disables it.
type Options struct {
	Port           int
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
	BatchDelay     time.Duration
	BatchTimeout   time.Duration
	Logger         *zap.Logger
}

// OptionsFromConfig maps the loaded configuration onto server options.
func OptionsFromConfig(cfg *core.Config, log *zap.Logger) Options {
	return Options{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindow,
		BatchDelay:     cfg.Batch.Delay,
		BatchTimeout:   cfg.Batch.Timeout,
		Logger:         log,
	}
}

// Server owns the gin engine and the services behind it.
type Server struct {
	engine     *gin.Engine
	analyzer   *core.Analyzer
	runner     core.Runner
	models     ModelLister
	classifier *variables.Classifier
	opts       Options
	logger     *zap.Logger
}

// New builds the server and registers every route.
func New(analyzer *core.Analyzer, runner core.Runner, models ModelLister, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Port == 0 {
		opts.Port = core.DefaultServerPort
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = core.DefaultAllowedOrigins
	}
	if opts.RateWindow == 0 {
		opts.RateWindow = core.DefaultRateWindow
	}

	s := &Server{
		analyzer:   analyzer,
		runner:     runner,
		models:     models,
		classifier: variables.NewClassifier(variables.DefaultKeywords()),
		opts:       opts,
		logger:     opts.Logger,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		RequestID(),
		logger.GinMiddleware(s.logger),
		logger.Recovery(s.logger),
		CORS(s.opts.AllowedOrigins, s.logger),
	)

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.Use(RateLimit(NewRateLimiter(s.opts.RateLimit, s.opts.RateWindow)))

	docs := api.Group("/documents")
	docs.GET("/models", s.listModels)
	docs.POST("/upload", BodyLimit(MaxUploadBody), s.uploadDocument)
	docs.POST("/scrape", BodyLimit(MaxJSONBody), s.scrapeURL)
	docs.GET("/analysis/:id", s.getAnalysis)

	exec := api.Group("/execute", BodyLimit(MaxJSONBody))
	exec.POST("/api", s.executeAPI)
	exec.POST("/batch", s.executeBatch)
	exec.POST("/validate", s.validateAPI)

	api.POST("/variables/detect", BodyLimit(MaxJSONBody), s.detectVariables)
	api.GET("/prompts/default", s.defaultPrompt)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"message": "Route not found", "status": http.StatusNotFound},
		})
	})
	return r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.Int("port", s.opts.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}
