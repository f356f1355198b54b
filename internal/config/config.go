// Package config loads the service configuration from the environment.
//
// Variables are read with the BILLER_ prefix, using "." as the nesting
// delimiter (BILLER_SERVER.PORT -> server.port -> Config.Server.Port).
// A `.env` file in the working directory is loaded first when present.
//
// Responsibilities:
//   - Map env vars into typed config structs.
//   - Fill defaults for optional settings.
//   - Validate required values so the process fails fast on bad config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "BILLER_"

// ServiceName tags logs and APM data.
const ServiceName = "biller"

// Config is the root configuration object.
//
// Observability is seeded from DefaultObservabilityConfig before the
// environment is read, so a variable overrides only its own field.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Storage       StorageConfig        `koanf:"storage" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables the limiter.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// URL, when set, takes precedence over the individual connection fields.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port" validate:"required_without=URL"`
	User            string `koanf:"user" validate:"required_without=URL"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_without=URL"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=1"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=1"`
}

// RedisConfig contains Redis connection details. Address is "host:port".
// An empty address disables Redis and the background job service.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// AuthConfig stores the Clerk secret key. When empty, mutating routes are
// served without authentication.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// Enabled reports whether bearer authentication is configured.
func (a AuthConfig) Enabled() bool {
	return a.SecretKey != ""
}

// IntegrationConfig holds third-party credentials.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`

	// NotifyEmail receives a message whenever a bill becomes fully paid.
	NotifyEmail string `koanf:"notify_email" validate:"omitempty,email"`
}

// EmailEnabled reports whether outgoing email can be sent.
func (i IntegrationConfig) EmailEnabled() bool {
	return i.ResendAPIKey != "" && i.NotifyEmail != ""
}

// StorageConfig controls where rendered bill PDFs live and how they are produced.
type StorageConfig struct {
	PDFDir string `koanf:"pdf_dir" validate:"required"`

	// AsyncRender hands PDF rendering to the job queue instead of rendering
	// inline after the bill is committed. Requires Redis.
	AsyncRender bool `koanf:"async_render"`
}

// LoadConfig reads BILLER_* variables, applies defaults, and validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	for key, value := range observabilityDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("could not set default %s: %w", key, err)
		}
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

		// List values are comma separated.
		if strings.HasSuffix(key, "cors_allowed_origins") || strings.HasSuffix(key, "health_checks.checks") {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Storage.AsyncRender && !mainConfig.Redis.Enabled() {
		return nil, fmt.Errorf("storage.async_render requires redis.address")
	}

	// Service name and environment always come from the primary block.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	// Matches the 300s recycle window the pool has always used.
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = 60
	}

	if c.Storage.PDFDir == "" {
		c.Storage.PDFDir = "pdfs"
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "Fabrication Billing <billing@resend.dev>"
	}
}

// observabilityDefaults flattens DefaultObservabilityConfig into koanf keys.
func observabilityDefaults() map[string]any {
	d := DefaultObservabilityConfig()
	return map[string]any{
		"observability.logging.level":                         d.Logging.Level,
		"observability.logging.format":                        d.Logging.Format,
		"observability.logging.slow_query_threshold":          d.Logging.SlowQueryThreshold,
		"observability.new_relic.app_log_forwarding_enabled":  d.NewRelic.AppLogForwardingEnabled,
		"observability.new_relic.distributed_tracing_enabled": d.NewRelic.DistributedTracingEnabled,
		"observability.new_relic.debug_logging":               d.NewRelic.DebugLogging,
		"observability.health_checks.enabled":                 d.HealthChecks.Enabled,
		"observability.health_checks.timeout":                 d.HealthChecks.Timeout,
		"observability.health_checks.checks":                  d.HealthChecks.Checks,
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
