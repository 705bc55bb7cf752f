package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func originRequest(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestMakeCheckOrigin(t *testing.T) {
	check := makeCheckOrigin([]string{"http://localhost:3000", "HTTPS://App.Example.com"})

	t.Run("AllowsListedOrigin", func(t *testing.T) {
		assert.True(t, check(originRequest("http://localhost:3000")))
		// Matching is case-insensitive on both sides.
		assert.True(t, check(originRequest("https://app.example.com")))
	})

	t.Run("AllowsAbsentOrigin", func(t *testing.T) {
		// Native clients send no Origin header at all.
		assert.True(t, check(originRequest("")))
	})

	t.Run("RejectsUnlistedOrigin", func(t *testing.T) {
		assert.False(t, check(originRequest("http://evil.example.com")))
		assert.False(t, check(originRequest("http://localhost:9999")))
	})

	t.Run("NormalizesOriginWithPath", func(t *testing.T) {
		assert.True(t, check(originRequest("http://localhost:3000/")))
	})
}

func TestExtractTokenFromWSRequest(t *testing.T) {
	t.Run("AuthorizationHeader", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Header.Set("Authorization", "Bearer abc123")
		token, err := extractTokenFromWSRequest(r)
		assert.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("Subprotocol", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Header.Set("Sec-WebSocket-Protocol", "bearer, abc123")
		token, err := extractTokenFromWSRequest(r)
		assert.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("Missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		_, err := extractTokenFromWSRequest(r)
		assert.Error(t, err)
	})
}
