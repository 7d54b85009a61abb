package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sendai-ikuei-track/site-server/internal/service"
)

type recordingLimiter struct {
	allowed bool
	resetAt time.Time
	keys    []string
}

func (l *recordingLimiter) CheckLimit(_ context.Context, key string, _ int, _ time.Duration) service.RateLimitDecision {
	l.keys = append(l.keys, key)
	return service.RateLimitDecision{Allowed: l.allowed, ResetAt: l.resetAt}
}

func (l *recordingLimiter) Backend() string { return "recording" }

func TestIPRateLimitMiddleware(t *testing.T) {
	t.Run("allows under limit and keys by client identity", func(t *testing.T) {
		limiter := &recordingLimiter{allowed: true}
		mw := NewIPRateLimitMiddleware(limiter, 10, time.Minute, "exclusive")

		req := httptest.NewRequest("POST", "/api/auth/exclusive", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		mw.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"ip:exclusive:203.0.113.7"}, limiter.keys)
	})

	t.Run("rejects with 429 and reset headers", func(t *testing.T) {
		limiter := &recordingLimiter{allowed: false, resetAt: time.Now().Add(30 * time.Second)}
		mw := NewIPRateLimitMiddleware(limiter, 10, time.Minute, "exclusive")

		req := httptest.NewRequest("POST", "/api/auth/exclusive", nil)
		rec := httptest.NewRecorder()
		mw.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
		assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("zero limit disables throttling", func(t *testing.T) {
		limiter := &recordingLimiter{allowed: false}
		mw := NewIPRateLimitMiddleware(limiter, 0, time.Minute, "exclusive")

		rec := httptest.NewRecorder()
		mw.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, limiter.keys)
	})

	t.Run("works with the in-memory limiter", func(t *testing.T) {
		mw := NewIPRateLimitMiddleware(service.NewMemoryRateLimiter(), 2, time.Minute, "exclusive")
		handler := mw.Handler(okHandler())

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest("POST", "/api/auth/exclusive", strings.NewReader(`{}`))
			req.Header.Set("X-Real-IP", "198.51.100.1")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}
