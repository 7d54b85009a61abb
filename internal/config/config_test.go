package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "k3vQ9yR2mX7pL5sT8wZ1aB4cD6eF0gH2"

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if original, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, original) })
		}
		os.Unsetenv(key)
	}
}

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("IsProduction is case insensitive", func(t *testing.T) {
		assert.True(t, (&Config{Environment: "Production"}).IsProduction())
		assert.False(t, (&Config{Environment: "development"}).IsProduction())
	})

	t.Run("optional collaborators follow their settings", func(t *testing.T) {
		cfg := &Config{}
		assert.False(t, cfg.RateLimitStoreConfigured())
		assert.False(t, cfg.MailDeliveryConfigured())
		assert.False(t, cfg.MetricsEnabled())

		cfg = &Config{RedisURL: "rediss://example", ResendAPIKey: "re_123", OTLPEndpoint: "http://otel:4317"}
		assert.True(t, cfg.RateLimitStoreConfigured())
		assert.True(t, cfg.MailDeliveryConfigured())
		assert.True(t, cfg.MetricsEnabled())
	})
}

func TestAcceptedPassword(t *testing.T) {
	t.Run("configured password wins", func(t *testing.T) {
		cfg := &Config{Environment: EnvProduction, ExclusivePassword: "track2024"}
		assert.Equal(t, "track2024", cfg.AcceptedPassword())
	})

	t.Run("development falls back to default", func(t *testing.T) {
		cfg := &Config{Environment: EnvDevelopment}
		assert.Equal(t, DevExclusivePassword, cfg.AcceptedPassword())
	})

	t.Run("production never falls back", func(t *testing.T) {
		cfg := &Config{Environment: EnvProduction}
		assert.Empty(t, cfg.AcceptedPassword())
	})
}

func TestValidate(t *testing.T) {
	t.Run("development needs no secrets", func(t *testing.T) {
		cfg := &Config{Environment: EnvDevelopment}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects unknown environment", func(t *testing.T) {
		cfg := &Config{Environment: "staging"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non bcrypt hash", func(t *testing.T) {
		cfg := &Config{Environment: EnvDevelopment, ExclusivePasswordHash: "plaintext"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bcrypt")
	})

	t.Run("rejects negative attempt limit", func(t *testing.T) {
		cfg := &Config{Environment: EnvDevelopment, ExclusiveAttemptsPerMinute: -1}
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires a password", func(t *testing.T) {
		cfg := &Config{Environment: EnvProduction, JWTSecret: strongSecret}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EXCLUSIVE_PASSWORD")
	})

	t.Run("production requires a signing secret", func(t *testing.T) {
		cfg := &Config{Environment: EnvProduction, ExclusivePassword: "track2024"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("production rejects the old insecure default secret", func(t *testing.T) {
		cfg := &Config{
			Environment:       EnvProduction,
			ExclusivePassword: "track2024",
			JWTSecret:         "change-this-secret-key-in-production",
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "weak"))
	})

	t.Run("production accepts hash and strong secret", func(t *testing.T) {
		cfg := &Config{
			Environment:           EnvProduction,
			ExclusivePasswordHash: "$2a$12$abcdefghijklmnopqrstuuJ4s0zQy1m6i7lq0c9H3Yw2o8Xk5p6W",
			JWTSecret:             strongSecret,
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		unsetenv(t, "PORT", "APP_ENV", "LOG_LEVEL", "EXCLUSIVE_ATTEMPTS_PER_MINUTE", "CONTACT_TO_EMAIL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, EnvDevelopment, cfg.Environment)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 10, cfg.ExclusiveAttemptsPerMinute)
		assert.Equal(t, "admin@sendai-ikuei-track.jp", cfg.ContactToEmail)
	})

	t.Run("loads custom values", func(t *testing.T) {
		t.Setenv("PORT", "3000")
		t.Setenv("APP_ENV", "production")
		t.Setenv("EXCLUSIVE_PASSWORD", "track2024")
		t.Setenv("REDIS_URL", "rediss://default@example.upstash.io:6379")
		t.Setenv("REDIS_TOKEN", "token")
		t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "track2024", cfg.ExclusivePassword)
		assert.Equal(t, "token", cfg.RedisToken)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails on malformed port", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")

		_, err := Load()
		assert.Error(t, err)
	})
}
