package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint("user_id"),
			"email":   c.GetString("email"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"email":   "user@example.com",
		"role":    "owner",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := get(authRouter(), "/protected", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":42`)
	assert.Contains(t, rec.Body.String(), `"role":"owner"`)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec := get(authRouter(), "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	rec := get(authRouter(), "/protected", "Token abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := get(authRouter(), "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	rec := get(authRouter(), "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareTokenFromQuery(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec := get(authRouter(), "/protected?token="+token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	ownerToken := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"role":    "owner",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	admins := authRouter(RequireRole("admin"))
	rec := get(admins, "/protected", "Bearer "+ownerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	owners := authRouter(RequireRole("owner"))
	rec = get(owners, "/protected", "Bearer "+ownerToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyRole(t *testing.T) {
	ownerToken := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"role":    "owner",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	userToken := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 43,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	r := authRouter(RequireAnyRole("owner", "admin"))
	assert.Equal(t, http.StatusOK, get(r, "/protected", "Bearer "+ownerToken).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/protected", "Bearer "+userToken).Code)
}
