package config

import "time"

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 45 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Redis ping timeout at startup
const RedisPingTimeout = 5 * time.Second

// Access gate
const (
	CredentialTTL          = 24 * time.Hour
	ExclusiveAttemptWindow = time.Minute
)

// Contact intake
const (
	ContactRateLimit      = 5
	ContactRateWindow     = time.Hour
	RateLimitCheckTimeout = 2 * time.Second
	DeliveryTimeout       = 10 * time.Second
	ContactMaxBodySize    = 64 << 10
)
