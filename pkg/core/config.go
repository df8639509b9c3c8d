package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Defaults for settings that are not present in config.json or the
// environment.
const (
	DefaultModel      = "claude-sonnet-4-5-20250929"
	DefaultServerPort = 3001
	DefaultRateLimit  = 100
	DefaultRateWindow = 15 * time.Minute
)

// DefaultAllowedOrigins are the browser origins accepted by the server.
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// Config is the resolved configuration.
type Config struct {
	AnthropicAPIKey string          `mapstructure:"anthropic_api_key"`
	GoogleAPIKey    string          `mapstructure:"google_api_key"`
	DefaultModel    string          `mapstructure:"default_model" validate:"required"`
	Server          ServerConfig    `mapstructure:"server"`
	Store           StoreConfig     `mapstructure:"store"`
	Redis           RedisConfig     `mapstructure:"redis"`
	Log             LogConfig       `mapstructure:"log"`
	Execution       ExecutionConfig `mapstructure:"execution"`
	Batch           BatchConfig     `mapstructure:"batch"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      int           `mapstructure:"rate_limit" validate:"min=0"`
	RateWindow     time.Duration `mapstructure:"rate_window" validate:"min=0"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=memory redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	Enabled  bool   `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output string `mapstructure:"output"`
}

type ExecutionConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

type BatchConfig struct {
	Delay   time.Duration `mapstructure:"delay" validate:"min=0"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// SetDefaults registers every known key on v so that AutomaticEnv can
// override it (ANTHROPIC_API_KEY, SERVER_PORT, REDIS_ADDR, ...).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("google_api_key", "")
	v.SetDefault("default_model", DefaultModel)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("server.rate_limit", DefaultRateLimit)
	v.SetDefault("server.rate_window", DefaultRateWindow)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("execution.timeout", DefaultExecutionTimeout)
	v.SetDefault("batch.delay", DefaultBatchDelay)
	v.SetDefault("batch.timeout", DefaultBatchTimeout)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig decodes v into a Config and validates it.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Redis.Enabled = cfg.Store.Driver == "redis"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks the config's field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// APIKeys returns the provider keys by provider name.
func (c *Config) APIKeys() map[string]string {
	return map[string]string{
		"claude": c.AnthropicAPIKey,
		"gemini": c.GoogleAPIKey,
	}
}
