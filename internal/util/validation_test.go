package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	t.Run("accepts basic addresses", func(t *testing.T) {
		assert.True(t, IsValidEmail("test@example.com"))
		assert.True(t, IsValidEmail("parent.name+club@mail.example.co.jp"))
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, email := range []string{
			"",
			"plainaddress",
			"missing-at.example.com",
			"user@nodot",
			"user@@example.com",
			"us er@example.com",
			"user@exa mple.com",
			"@example.com",
		} {
			assert.False(t, IsValidEmail(email), email)
		}
	})

	t.Run("rejects addresses over 254 characters", func(t *testing.T) {
		local := strings.Repeat("a", 64)
		domain := strings.Repeat("b", 254-len(local)-len("@.com")+1) + ".com"
		email := local + "@" + domain
		assert.Greater(t, len(email), MaxEmailLength)
		assert.False(t, IsValidEmail(email))
	})

	t.Run("accepts addresses of exactly 254 characters", func(t *testing.T) {
		local := strings.Repeat("a", 64)
		domain := strings.Repeat("b", 254-len(local)-len("@.com")) + ".com"
		email := local + "@" + domain
		assert.Len(t, email, MaxEmailLength)
		assert.True(t, IsValidEmail(email))
	})
}
