package main

import (
	"context"
	"time"

	"github.com/blackcoderx/docuapi/pkg/server"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const sweepInterval = 10 * time.Minute

func init() {
	serveCmd.Flags().IntP("port", "P", 0, "port to listen on (default from config, 3001)")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx := cmd.Context()
		go sweepExpired(ctx, a.store, a.log)

		srv := server.New(a.analyzer, a.executor, a.registry, server.OptionsFromConfig(a.cfg, a.log))
		return srv.Run(ctx)
	},
}

// sweepExpired drops expired analyses until ctx is done.
func sweepExpired(ctx context.Context, store storage.AnalysisStore, log *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.SweepExpired(ctx)
			if err != nil {
				log.Warn("failed to sweep expired analyses", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired analyses removed", zap.Int("count", n))
			}
		}
	}
}
