package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _ := GenerateToken()
		token2, _ := GenerateToken()
		assert.NotEqual(t, token1, token2)
	})

	t.Run("generates valid hex", func(t *testing.T) {
		token, _ := GenerateToken()
		for _, c := range token {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
		}
	})
}

func TestConstantTimeEqual(t *testing.T) {
	t.Run("returns true for equal strings", func(t *testing.T) {
		assert.True(t, ConstantTimeEqual("1010", "1010"))
	})

	t.Run("returns false for different strings", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("1010", "1011"))
	})

	t.Run("returns false for different lengths", func(t *testing.T) {
		assert.False(t, ConstantTimeEqual("1010", "10100"))
	})

	t.Run("returns true for empty strings", func(t *testing.T) {
		assert.True(t, ConstantTimeEqual("", ""))
	})
}

func TestPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("track2024"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("accepts matching password", func(t *testing.T) {
		assert.True(t, CheckPasswordHash("track2024", string(hash)))
	})

	t.Run("rejects other password", func(t *testing.T) {
		assert.False(t, CheckPasswordHash("track2025", string(hash)))
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		assert.False(t, CheckPasswordHash("track2024", "not-a-hash"))
	})

	t.Run("HashPassword round trips", func(t *testing.T) {
		hashed, err := HashPassword("1010")
		require.NoError(t, err)
		assert.True(t, CheckPasswordHash("1010", hashed))
	})
}
