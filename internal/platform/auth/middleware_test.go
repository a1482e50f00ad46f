package auth

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

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": Actor(c), "role": c.GetString(CtxRoleKey)})
	})
	r.DELETE("/things", RequireAuth(secret), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter()
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("valid token", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "clerk-1", "role": "staff", "exp": exp})

		w := do(r, http.MethodGet, "/me", tok)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"sub":"clerk-1","role":"staff"}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "clerk-1", "exp": exp})

		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok).Code)
	})

	t.Run("expired", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "clerk-1", "exp": time.Now().Add(-time.Minute).Unix()})

		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok).Code)
	})

	t.Run("other algorithm", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS512, secret, jwt.MapClaims{"sub": "clerk-1", "exp": exp})

		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok).Code)
	})

	t.Run("no subject", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"role": "admin", "exp": exp})

		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok).Code)
	})
}

func TestRequireRole(t *testing.T) {
	r := newRouter()
	exp := time.Now().Add(time.Hour).Unix()

	admin := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "a", "role": RoleAdmin, "exp": exp})
	staff := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "s", "role": "staff", "exp": exp})
	noRole := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "n", "exp": exp})

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/things", admin).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/things", staff).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/things", noRole).Code)
}
