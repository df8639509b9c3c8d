package storage

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// StoreConfig selects the analysis store backend.
type StoreConfig struct {
	Driver string // memory or redis
	Redis  RedisConfig
}

// StoreOption configures NewAnalysisStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithStoreLogger sets the logger used to report fallbacks.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// WithMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Enabled by default.
func WithMemoryFallback(allow bool) StoreOption {
	return func(o *storeOptions) {
		o.allowFallback = allow
	}
}

// NewAnalysisStore builds the store named by cfg.Driver.
func NewAnalysisStore(cfg StoreConfig, opts ...StoreOption) (AnalysisStore, error) {
	o := storeOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemoryAnalysisStore(), nil
	case "redis":
		store, err := NewRedisAnalysisStore(cfg.Redis)
		if err == nil {
			o.logger.Info("using redis analysis store", zap.String("addr", cfg.Redis.Addr))
			return store, nil
		}
		if !o.allowFallback {
			return nil, err
		}
		o.logger.Warn("redis unavailable, falling back to in-memory analysis store",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
		return NewMemoryAnalysisStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (use memory or redis)", cfg.Driver)
	}
}
