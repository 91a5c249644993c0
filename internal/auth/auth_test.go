package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	hash, err := HashPassword("testpassword123")
	require.NoError(t, err)
	return NewAuthenticator("test-secret", "admin", hash)
}

func TestHashPassword(t *testing.T) {
	password := "testpassword123"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, CheckPassword(password, hash))
	assert.False(t, CheckPassword("wrongpassword", hash))
}

func TestLogin(t *testing.T) {
	a := newTestAuthenticator(t)

	token, err := a.Login("admin", "testpassword123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = a.Login("admin", "nope")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = a.Login("someone", "testpassword123")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestLoginDisabled(t *testing.T) {
	a := NewAuthenticator("secret", "admin", "")
	assert.False(t, a.Enabled())

	_, err := a.Login("admin", "")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestValidateToken(t *testing.T) {
	a := newTestAuthenticator(t)

	token, err := a.GenerateToken("admin")
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestValidateToken_Invalid(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	other := NewAuthenticator("other-secret", "admin", "x")
	token, err := other.GenerateToken("admin")
	require.NoError(t, err)
	_, err = a.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateToken_Expired(t *testing.T) {
	a := newTestAuthenticator(t)
	a.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := a.GenerateToken("admin")
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestAuthenticator(t)
	token, err := a.GenerateToken("admin")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", a.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUsername(c))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad format", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuthenticator("secret", "admin", "")

	r := gin.New()
	r.GET("/open", a.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
