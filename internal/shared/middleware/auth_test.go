package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/shared"
	"blog-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(manager *jwt.Manager, roles ...shared.Role) *gin.Engine {
	router := gin.New()
	handlers := []gin.HandlerFunc{RequireAuth(manager)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		principal := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": principal.ID, "role": principal.Role})
	})
	router.GET("/protected", handlers...)
	return router
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	router := authRouter(manager)

	t.Run("valid token resolves principal", func(t *testing.T) {
		token, err := manager.GenerateAccessToken(uuid.NewString(), "a@example.com", "author")
		require.NoError(t, err)

		rec := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := get(router, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		rec := get(router, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := get(router, "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewManager("different-secret")
		token, err := other.GenerateAccessToken(uuid.NewString(), "a@example.com", "author")
		require.NoError(t, err)

		rec := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		token, err := manager.GenerateAccessToken(uuid.NewString(), "a@example.com", "superuser")
		require.NoError(t, err)

		rec := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	router := authRouter(manager, shared.RoleReviewer, shared.RoleAdmin)

	t.Run("allowed role passes", func(t *testing.T) {
		token, err := manager.GenerateAccessToken(uuid.NewString(), "r@example.com", "reviewer")
		require.NoError(t, err)

		rec := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("author is rejected", func(t *testing.T) {
		token, err := manager.GenerateAccessToken(uuid.NewString(), "a@example.com", "author")
		require.NoError(t, err)

		rec := get(router, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
