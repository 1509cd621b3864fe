// Package config reads service settings from SHERRYS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// Config is shared by every binary; each one reads only the sections it needs.
type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Business     BusinessConfig
	Calendar     CalendarConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

// Load parses the environment, fills the database DSN from its parts when
// needed, and reports every invalid setting at once.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.resolveDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs error
	if _, err := c.Business.Location(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Outbox.BatchSize < 1 {
		errs = multierr.Append(errs, errors.New("outbox batch size must be at least 1"))
	}
	if c.Outbox.MaxAttempts < 1 {
		errs = multierr.Append(errs, errors.New("outbox max attempts must be at least 1"))
	}
	if c.Cron.LockTTL > 0 && c.Cron.Interval > 0 && c.Cron.LockTTL > c.Cron.Interval {
		errs = multierr.Append(errs, fmt.Errorf("cron lock ttl %s outlives the %s interval", c.Cron.LockTTL, c.Cron.Interval))
	}
	limited := c.RateLimit.OrderIntakeLimit > 0 || c.RateLimit.CityRequestLimit > 0
	if limited && c.RateLimit.Window <= 0 {
		errs = multierr.Append(errs, errors.New("rate limit window must be positive"))
	}
	return errs
}

type AppConfig struct {
	Env            string   `envconfig:"SHERRYS_APP_ENV" required:"true"`
	Port           string   `envconfig:"SHERRYS_APP_PORT" default:"3000"`
	LogLevel       string   `envconfig:"SHERRYS_LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"SHERRYS_LOG_WARN_STACK" default:"false"`
	LogFormat      string   `envconfig:"SHERRYS_LOG_FORMAT" default:"json"`
	AllowedOrigins []string `envconfig:"SHERRYS_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool  { return strings.EqualFold(a.Env, AppEnvDev) }
func (a AppConfig) IsProd() bool { return strings.EqualFold(a.Env, AppEnvProd) }

// ConsoleLogs is true when SHERRYS_LOG_FORMAT=console.
func (a AppConfig) ConsoleLogs() bool { return strings.EqualFold(a.LogFormat, "console") }

// ServiceConfig names the running binary in logs. Each main overrides it.
type ServiceConfig struct {
	Kind string `envconfig:"SHERRYS_SERVICE_KIND" default:"api"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHERRYS_AUTO_MIGRATE" default:"false"`
}
