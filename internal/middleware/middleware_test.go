package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimitMiddleware(t *testing.T) {
	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows small bodies", func(t *testing.T) {
		mw := NewBodyLimitMiddleware(16)
		rec := httptest.NewRecorder()
		mw.Handler(readAll).ServeHTTP(rec, httptest.NewRequest("POST", "/", strings.NewReader("small")))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects declared oversize bodies", func(t *testing.T) {
		mw := NewBodyLimitMiddleware(16)
		rec := httptest.NewRecorder()
		mw.Handler(readAll).ServeHTTP(rec, httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 64))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
	})

	t.Run("caps undeclared bodies while reading", func(t *testing.T) {
		mw := NewBodyLimitMiddleware(16)
		req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		mw.Handler(readAll).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestCSRFMiddleware(t *testing.T) {
	mw, err := NewCSRFMiddleware([]string{"https://preview.sendai-ikuei-track.jp"})
	require.NoError(t, err)
	handler := mw.Handler(okHandler())

	t.Run("allows same origin posts", func(t *testing.T) {
		req := httptest.NewRequest("POST", "https://sendai-ikuei-track.jp/api/contact", nil)
		req.Header.Set("Sec-Fetch-Site", "same-origin")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows requests without browser headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/contact", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects cross site posts", func(t *testing.T) {
		req := httptest.NewRequest("POST", "https://sendai-ikuei-track.jp/api/contact", nil)
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allows trusted origins", func(t *testing.T) {
		req := httptest.NewRequest("POST", "https://sendai-ikuei-track.jp/api/contact", nil)
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		req.Header.Set("Origin", "https://preview.sendai-ikuei-track.jp")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("safe methods always pass", func(t *testing.T) {
		req := httptest.NewRequest("GET", "https://sendai-ikuei-track.jp/api/auth/exclusive", nil)
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects malformed trusted origin", func(t *testing.T) {
		_, err := NewCSRFMiddleware([]string{"not a url"})
		assert.Error(t, err)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("no origins passes through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/exclusive", nil)
		req.Header.Set("Origin", "https://other.example")
		rec := httptest.NewRecorder()
		NewCORSMiddleware(nil)(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed origin gets credentials", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/exclusive", nil)
		req.Header.Set("Origin", "https://preview.sendai-ikuei-track.jp")
		rec := httptest.NewRecorder()
		NewCORSMiddleware([]string{"https://preview.sendai-ikuei-track.jp"})(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, "https://preview.sendai-ikuei-track.jp", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("sets headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewSecurityHeadersMiddleware(false).Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("adds HSTS in production", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewSecurityHeadersMiddleware(true).Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("no store", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NoStore(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})
}

func TestRequestLogger(t *testing.T) {
	handler := chimiddleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
