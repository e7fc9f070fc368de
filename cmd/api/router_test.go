package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/config"
	"blog-backend/internal/domains/post"
	postHandler "blog-backend/internal/domains/post/handler"
	postRepo "blog-backend/internal/domains/post/repository"
	postService "blog-backend/internal/domains/post/service"
	"blog-backend/internal/infrastructure/database"
	"blog-backend/internal/shared"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/container"
	"blog-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newRouterEnv wires the router against the in-memory repository and an
// uninitialized database pool, so the health endpoint reports degraded.
func newRouterEnv() (*gin.Engine, *container.Container) {
	svc := postService.NewPostService(postRepo.NewMemoryRepository(), cache.NewNoop(), time.Minute)

	c := &container.Container{
		Config: &config.Config{
			App: config.AppConfig{Name: "Blog API", Version: "test"},
		},
		DB:          &database.PostgresDB{},
		Cache:       cache.NewNoop(),
		JWTManager:  jwt.NewManager("test-secret"),
		PostService: svc,
		PostHandler: postHandler.NewPostHandler(svc),
	}

	return SetupRouter(c), c
}

func request(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, c *container.Container, role string) string {
	t.Helper()
	tok, err := c.JWTManager.GenerateAccessToken(uuid.NewString(), role+"@example.com", role)
	require.NoError(t, err)
	return tok
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newRouterEnv()

	// cache pings fine, the database pool was never connected
	rec := request(router, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNHEALTHY")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newRouterEnv()

	rec := request(router, http.MethodPost, "/api/v1/posts", "", `{"title":"t","body":"b"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorCreatesThroughRouter(t *testing.T) {
	router, c := newRouterEnv()

	rec := request(router, http.MethodPost, "/api/v1/posts",
		token(t, c, "author"), `{"title":"Routed Post","body":"b"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"routed-post"`)
}

func TestAdminRouteRoleGate(t *testing.T) {
	router, c := newRouterEnv()

	t.Run("reviewer cannot list all", func(t *testing.T) {
		rec := request(router, http.MethodGet, "/api/v1/admin/posts", token(t, c, "reviewer"), "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("reviewer sees the pending queue", func(t *testing.T) {
		rec := request(router, http.MethodGet, "/api/v1/admin/posts/pending", token(t, c, "reviewer"), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin lists all", func(t *testing.T) {
		rec := request(router, http.MethodGet, "/api/v1/admin/posts", token(t, c, "admin"), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPublicBlogServedWithoutAuth(t *testing.T) {
	router, c := newRouterEnv()
	ctx := context.Background()

	author := shared.Principal{ID: uuid.New(), Role: shared.RoleAuthor}
	reviewer := shared.Principal{ID: uuid.New(), Role: shared.RoleReviewer}

	created, err := c.PostService.Create(ctx, author, &post.CreatePostRequest{Title: "Routed Public Post", Body: "b"})
	require.NoError(t, err)
	_, err = c.PostService.Approve(ctx, reviewer, created.ID)
	require.NoError(t, err)
	_, err = c.PostService.Publish(ctx, reviewer, created.ID)
	require.NoError(t, err)

	rec := request(router, http.MethodGet, "/api/v1/blog/routed-public-post", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"views":1`)
}
