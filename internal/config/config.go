package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DevExclusivePassword is accepted by the access gate only outside
// production when no password is configured.
const DevExclusivePassword = "1010"

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
	"change-this-secret-key-in-production",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	ExclusivePassword          string `env:"EXCLUSIVE_PASSWORD"`
	ExclusivePasswordHash      string `env:"EXCLUSIVE_PASSWORD_HASH"`
	JWTSecret                  string `env:"JWT_SECRET"`
	ExclusiveAttemptsPerMinute int    `env:"EXCLUSIVE_ATTEMPTS_PER_MINUTE" envDefault:"10"`
	ExclusiveContentDir        string `env:"EXCLUSIVE_CONTENT_DIR" envDefault:"static/limited-content"`

	RedisURL   string `env:"REDIS_URL"`
	RedisToken string `env:"REDIS_TOKEN"`

	ResendAPIKey     string `env:"RESEND_API_KEY"`
	ContactToEmail   string `env:"CONTACT_TO_EMAIL" envDefault:"admin@sendai-ikuei-track.jp"`
	ContactFromEmail string `env:"CONTACT_FROM_EMAIL" envDefault:"noreply@sendai-ikuei-track.jp"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"console"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// RateLimitStoreConfigured reports whether contact submissions can be
// counted in Redis. Without it the contact limiter is a no-op.
func (c *Config) RateLimitStoreConfigured() bool {
	return c.RedisURL != ""
}

// MailDeliveryConfigured reports whether inquiries are sent by email
// rather than only logged.
func (c *Config) MailDeliveryConfigured() bool {
	return c.ResendAPIKey != ""
}

func (c *Config) MetricsEnabled() bool {
	return c.OTLPEndpoint != ""
}

// AcceptedPassword returns the plain shared password for the access gate.
// The development fallback is only returned outside production; an empty
// result means no plain password is usable.
func (c *Config) AcceptedPassword() string {
	if c.ExclusivePassword != "" {
		return c.ExclusivePassword
	}
	if !c.IsProduction() {
		return DevExclusivePassword
	}
	return ""
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Environment) {
	case EnvDevelopment, EnvProduction, "test":
	default:
		return fmt.Errorf("APP_ENV must be one of development, test, production (got %q)", c.Environment)
	}

	if c.ExclusivePasswordHash != "" {
		if !strings.HasPrefix(c.ExclusivePasswordHash, "$2a$") &&
			!strings.HasPrefix(c.ExclusivePasswordHash, "$2b$") &&
			!strings.HasPrefix(c.ExclusivePasswordHash, "$2y$") {
			return fmt.Errorf("EXCLUSIVE_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
		}
	}

	if c.ExclusiveAttemptsPerMinute < 0 {
		return fmt.Errorf("EXCLUSIVE_ATTEMPTS_PER_MINUTE must not be negative")
	}

	if c.IsProduction() {
		if c.ExclusivePassword == "" && c.ExclusivePasswordHash == "" {
			return fmt.Errorf("EXCLUSIVE_PASSWORD or EXCLUSIVE_PASSWORD_HASH is required in production")
		}
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}

		if c.RedisURL == "" {
			log.Warn().Msg("REDIS_URL is empty in production: contact form rate limiting disabled")
		} else if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.ResendAPIKey == "" {
			log.Warn().Msg("RESEND_API_KEY is empty in production: inquiries will only be logged")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
