package container

import (
	"context"
	"fmt"

	"blog-backend/internal/config"
	infraCache "blog-backend/internal/infrastructure/cache"
	"blog-backend/internal/infrastructure/database"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"

	"blog-backend/internal/domains/post"
	postHandler "blog-backend/internal/domains/post/handler"
	postRepo "blog-backend/internal/domains/post/repository"
	postService "blog-backend/internal/domains/post/service"
)

// Container holds the application's dependency graph. Initialization order
// matters: config, infrastructure, repositories, services, handlers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Cache      cache.Cache
	JWTManager *jwt.Manager

	PostRepo    post.Repository
	PostService post.Service
	PostHandler *postHandler.PostHandler
}

// NewContainer builds and initializes the whole dependency graph. Any
// failure here prevents the application from starting.
func NewContainer() (*Container, error) {
	c := &Container{}
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	c.DB = database.NewPostgresDB(&cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Redis is optional; without it the cache degrades to a no-op.
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
		c.Cache = cache.NewNoop()
	} else {
		c.Cache = infraCache.NewRedisCache(c.Redis)
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	c.PostRepo = postRepo.NewPostgresRepository(c.DB.Pool)
	c.PostService = postService.NewPostService(c.PostRepo, c.Cache, cfg.Redis.ListTTL)
	c.PostHandler = postHandler.NewPostHandler(c.PostService)

	return c, nil
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
