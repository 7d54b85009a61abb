package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIdentity(t *testing.T) {
	t.Run("uses first forwarded entry", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/contact", nil)
		req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1, 10.0.0.2")
		req.Header.Set("X-Real-IP", "198.51.100.1")

		assert.Equal(t, "203.0.113.7", ClientIdentity(req))
	})

	t.Run("falls back to real ip header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/contact", nil)
		req.Header.Set("X-Real-IP", "198.51.100.1")

		assert.Equal(t, "198.51.100.1", ClientIdentity(req))
	})

	t.Run("empty forwarded entry falls through", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/contact", nil)
		req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
		req.Header.Set("X-Real-IP", "198.51.100.1")

		assert.Equal(t, "198.51.100.1", ClientIdentity(req))
	})

	t.Run("unknown without proxy headers", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/contact", nil)

		assert.Equal(t, UnknownClient, ClientIdentity(req))
	})
}
