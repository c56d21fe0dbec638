package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func TestIssueParse(t *testing.T) {
	tok, err := Issue("local", "Local user", "attendify", testKey, time.Hour, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	claims, err := Parse(tok.AccessToken, testKey, "attendify")
	require.NoError(t, err)
	assert.Equal(t, "local", claims.Owner)
	assert.Equal(t, "Local user", claims.Name)

	_, err = Parse(tok.AccessToken, "other-key", "attendify")
	assert.Error(t, err)
	_, err = Parse(tok.AccessToken, testKey, "someone-else")
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	tok, err := Issue("local", "", "attendify", testKey, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = Parse(tok.AccessToken, testKey, "attendify")
	assert.Error(t, err)
}

func TestHMACVerifier(t *testing.T) {
	tok, err := Issue("u1", "", "", testKey, time.Hour, time.Now())
	require.NoError(t, err)
	id, err := HMAC{Key: testKey}.Verify(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.Owner)
}

func TestRequireOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireOwner(HMAC{Key: testKey}), func(c *gin.Context) {
		c.String(http.StatusOK, Owner(c))
	})

	tok, err := Issue("u42", "", "", testKey, time.Hour, time.Now())
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + tok.AccessToken, http.StatusOK, "u42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}
