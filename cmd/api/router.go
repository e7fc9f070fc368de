package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/shared"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/response"
	"blog-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPostRoutes(v1, c)
		setupAdminRoutes(v1, c)
		setupBlogRoutes(v1, c)
	}

	return router
}

// ========================================
// POST ROUTES (authenticated)
// ========================================
func setupPostRoutes(v1 *gin.RouterGroup, c *container.Container) {
	posts := v1.Group("/posts")
	posts.Use(middleware.RequireAuth(c.JWTManager))
	{
		posts.POST("", c.PostHandler.Create)
		posts.GET("/me", c.PostHandler.ListOwn)
		posts.GET("/:id", c.PostHandler.GetByID)
		posts.PUT("/:id", c.PostHandler.Update)
		posts.DELETE("/:id", c.PostHandler.Delete)

		posts.POST("/:id/approve", c.PostHandler.Approve)
		posts.POST("/:id/reject", c.PostHandler.Reject)
		posts.POST("/:id/publish", c.PostHandler.Publish)
		posts.POST("/:id/archive", c.PostHandler.Archive)

		posts.PUT("/:id/like", c.PostHandler.Like)
		posts.DELETE("/:id/like", c.PostHandler.Unlike)
		posts.POST("/:id/comments", c.PostHandler.AddComment)
		posts.DELETE("/:id/comments/:commentId", c.PostHandler.DeleteComment)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin/posts")
	admin.Use(middleware.RequireAuth(c.JWTManager))
	{
		admin.GET("", middleware.RequireRoles(shared.RoleAdmin), c.PostHandler.ListAll)
		admin.GET("/stats", middleware.RequireRoles(shared.RoleAdmin), c.PostHandler.Stats)
		admin.GET("/pending",
			middleware.RequireRoles(shared.RoleReviewer, shared.RoleAdmin),
			c.PostHandler.ListPending)
	}
}

// ========================================
// PUBLIC BLOG ROUTES
// ========================================
func setupBlogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	blog := v1.Group("/blog")
	{
		blog.GET("", c.PostHandler.ListPublished)
		blog.GET("/:slug", c.PostHandler.GetBySlug)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// The cache is optional infrastructure; report it but never fail on it.
		cacheStatus := "ok"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "unavailable"
		}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "UNHEALTHY", err.Error())
			return
		}

		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"name":    c.Config.App.Name,
			"version": c.Config.App.Version,
			"cache":   cacheStatus,
		})
	}
}
