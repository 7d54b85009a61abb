package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sendai-ikuei-track/site-server/internal/audit"
	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
	"github.com/sendai-ikuei-track/site-server/internal/httputil"
	"github.com/sendai-ikuei-track/site-server/internal/service"
	"github.com/sendai-ikuei-track/site-server/internal/telemetry"
)

// IPRateLimitMiddleware throttles requests per client identity. A limit of
// zero disables it.
type IPRateLimitMiddleware struct {
	limiter service.RateLimiter
	limit   int
	window  time.Duration
	prefix  string
}

func NewIPRateLimitMiddleware(limiter service.RateLimiter, limit int, window time.Duration, prefix string) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	if m.limit <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIdentity(r)

		key := fmt.Sprintf("ip:%s:%s", m.prefix, ip)
		decision := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)

		if !decision.Allowed {
			telemetry.Count(r.Context(), telemetry.GetMetrics().RateLimitRejectionsTotal, "scope", m.prefix)
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]any{"scope": m.prefix},
			})
			httputil.WriteError(w, apperrors.RateLimitExceeded(apperrors.MsgTooManyAttempts, decision.ResetAt))
			return
		}

		next.ServeHTTP(w, r)
	})
}
