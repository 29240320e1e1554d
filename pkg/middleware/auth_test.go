package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/pkg/middleware"
)

const testSecret = "unit-test-secret"

func newProtectedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", middleware.JWTAuth(secret), func(c *gin.Context) {
		claims := c.MustGet(middleware.ClaimsKey).(*middleware.Claims)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	return engine
}

func signToken(t *testing.T, secret string, expiry time.Duration) string {
	t.Helper()
	claims := &middleware.Claims{
		Subject: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func request(engine *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestJWTAuthValidToken(t *testing.T) {
	engine := newProtectedRouter(testSecret)
	w := request(engine, "Bearer "+signToken(t, testSecret, time.Hour))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operator")
}

func TestJWTAuthMissingHeader(t *testing.T) {
	engine := newProtectedRouter(testSecret)
	w := request(engine, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	engine := newProtectedRouter(testSecret)
	w := request(engine, "Token abc")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	engine := newProtectedRouter(testSecret)
	w := request(engine, "Bearer "+signToken(t, "other-secret", time.Hour))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	engine := newProtectedRouter(testSecret)
	w := request(engine, "Bearer "+signToken(t, testSecret, -time.Hour))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
