package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sendai-ikuei-track/site-server/internal/httputil"
)

// MaxFieldLength bounds free-text values written to audit records.
const MaxFieldLength = 100

type EventType string

const (
	EventExclusiveLoginSuccess EventType = "exclusive_login_success"
	EventExclusiveLoginFailure EventType = "exclusive_login_failure"
	EventExclusiveLogout       EventType = "exclusive_logout"
	EventRateLimitExceed       EventType = "rate_limit_exceeded"
	EventCSRFFailure           EventType = "csrf_failure"
	EventAuthFailure           EventType = "auth_failure"
	EventContactReceived       EventType = "contact_received"
	EventContactDeliveryFailed EventType = "contact_delivery_failed"
)

type Event struct {
	Type      EventType
	IP        string
	UserAgent string
	Path      string
	Details   map[string]any
}

// contextLogger returns the request-scoped logger when ctx carries one and
// the global logger otherwise.
func contextLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

func Log(ctx context.Context, event Event) {
	logger := contextLogger(ctx).With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", Truncate(event.UserAgent)).Logger()
	}
	if event.Path != "" {
		logger = logger.With().Str("path", event.Path).Logger()
	}

	logEvent := logger.Info()
	if isFailure(event.Type) {
		logEvent = logger.Warn()
	}
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func isFailure(t EventType) bool {
	switch t {
	case EventExclusiveLoginFailure, EventRateLimitExceed, EventCSRFFailure,
		EventAuthFailure, EventContactDeliveryFailed:
		return true
	}
	return false
}

func addField(e *zerolog.Event, key string, value any) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, Truncate(v))
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	case time.Time:
		return e.Time(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = httputil.ClientIdentity(r)
	event.UserAgent = r.UserAgent()
	event.Path = r.URL.Path
	Log(r.Context(), event)
}

// Truncate cuts s to MaxFieldLength characters, marking the cut.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxFieldLength {
		return s
	}
	return string(runes[:MaxFieldLength]) + "..."
}
