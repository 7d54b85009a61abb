package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sendai-ikuei-track/site-server/internal/config"
	"github.com/sendai-ikuei-track/site-server/internal/handler"
	"github.com/sendai-ikuei-track/site-server/internal/mail"
	"github.com/sendai-ikuei-track/site-server/internal/middleware"
	"github.com/sendai-ikuei-track/site-server/internal/redis"
	"github.com/sendai-ikuei-track/site-server/internal/service"
	"github.com/sendai-ikuei-track/site-server/internal/telemetry"
	"github.com/sendai-ikuei-track/site-server/internal/util"
)

const (
	serviceName = "sendai-ikuei-track-site"
	version     = "1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogFormat(cfg.LogFormat)
	setLogLevel(cfg.LogLevel)
	zerolog.DefaultContextLogger = &log.Logger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	if cfg.MetricsEnabled() {
		shutdownTelemetry, err := telemetry.InitTelemetry(ctx, serviceName, version)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize telemetry")
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown telemetry")
			}
		}()
		log.Info().Msg("metrics export enabled")
	}

	contactLimiter, attemptLimiter, closeRedis := newRateLimiters(ctx, cfg)
	defer closeRedis()

	secret, err := signingSecret(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve signing secret")
	}

	accessService := service.NewAccessService(service.AccessConfig{
		Password:     cfg.AcceptedPassword(),
		PasswordHash: cfg.ExclusivePasswordHash,
		Secret:       secret,
		TTL:          config.CredentialTTL,
	})
	if cfg.ExclusivePassword == "" && cfg.ExclusivePasswordHash == "" && !cfg.IsProduction() {
		log.Warn().Msg("EXCLUSIVE_PASSWORD is not set: using the development default password")
	}

	sender := newSender(cfg)
	contactService := service.NewContactService(contactLimiter, sender)

	csrfMiddleware, err := middleware.NewCSRFMiddleware(cfg.CORSOrigins)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid CORS_ORIGINS")
	}

	r := newRouter(routerDeps{
		cfg:            cfg,
		access:         accessService,
		contact:        contactService,
		attemptLimiter: attemptLimiter,
		csrf:           csrfMiddleware,
		health:         handler.NewHealthHandler(contactLimiter.Backend(), sender.Backend()),
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("env", cfg.Environment).
			Str("rateLimiter", contactLimiter.Backend()).
			Str("mailer", sender.Backend()).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newRateLimiters returns the contact limiter and the password attempt
// limiter. Without Redis the contact limiter is a no-op and attempts are
// counted in process.
func newRateLimiters(ctx context.Context, cfg *config.Config) (service.RateLimiter, service.RateLimiter, func()) {
	if !cfg.RateLimitStoreConfigured() {
		log.Warn().Msg("REDIS_URL is not set: contact form rate limiting disabled")
		return service.NewNoopRateLimiter(), service.NewMemoryRateLimiter(), func() {}
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisToken, config.RedisPingTimeout)
	if err != nil {
		// Fail open, same as a store error during a check.
		log.Warn().Err(err).Msg("redis unavailable: contact form rate limiting disabled")
		return service.NewNoopRateLimiter(), service.NewMemoryRateLimiter(), func() {}
	}
	log.Info().Msg("redis connected")

	limiter := service.NewRedisRateLimiter(redisClient.Client, config.RateLimitCheckTimeout)
	return limiter, limiter, func() {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}
}

func newSender(cfg *config.Config) mail.Sender {
	if !cfg.MailDeliveryConfigured() {
		log.Warn().Msg("RESEND_API_KEY is not set: inquiries will be logged, not emailed")
		return mail.NewLogSender(log.Logger)
	}
	return mail.NewResendSender(mail.ResendConfig{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.ContactFromEmail,
		To:     cfg.ContactToEmail,
	})
}

// signingSecret returns the configured credential secret. Outside
// production a missing secret is replaced by a random one, so credentials
// do not survive a restart.
func signingSecret(cfg *config.Config) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	secret, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate signing secret: %w", err)
	}
	log.Warn().Msg("JWT_SECRET is not set: using a random per-process secret")
	return []byte(secret), nil
}

func setLogFormat(format string) {
	if strings.EqualFold(format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
