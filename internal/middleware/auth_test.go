package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenReturnsSubject(t *testing.T) {
	auth := NewAuthenticator("secret")

	token := signToken(t, "secret", "42", time.Now().Add(time.Hour))
	userID, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestValidateTokenRejectsBadInput(t *testing.T) {
	auth := NewAuthenticator("secret")

	_, err := auth.ValidateToken(signToken(t, "other-secret", "42", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ValidateToken(signToken(t, "secret", "42", time.Now().Add(-time.Hour)))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ValidateToken(signToken(t, "secret", "not-a-number", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ValidateToken("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthMiddlewareSetsUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuthenticator("secret")

	router := gin.New()
	router.Use(AuthMiddleware(auth))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("userID")})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "7", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuthenticator("secret")

	router := gin.New()
	router.Use(AuthMiddleware(auth))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
