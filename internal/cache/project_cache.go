package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
)

const (
	projectCachePrefix = "project:"
	projectCacheTTL    = 5 * time.Minute
)

// ProjectCache keeps hot project lookups off the database on the tracking
// path. Implementations must treat a cache miss as (nil, nil).
type ProjectCache interface {
	// Get retrieves a project by id. Returns nil, nil on a cache miss.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// Set stores a project in the cache.
	Set(ctx context.Context, project *domain.Project) error

	// Invalidate removes a project from the cache.
	Invalidate(ctx context.Context, id string) error
}

// Compile-time interface checks
var (
	_ ProjectCache = (*RedisProjectCache)(nil)
	_ ProjectCache = (*noopProjectCache)(nil)
)

// RedisProjectCache implements ProjectCache using Redis.
type RedisProjectCache struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisProjectCache creates a Redis-backed project cache. A nil client
// yields a no-op cache so callers never have to branch on configuration.
func NewRedisProjectCache(rdb *redis.Client, log *zap.Logger) ProjectCache {
	if rdb == nil {
		return &noopProjectCache{}
	}
	return &RedisProjectCache{rdb: rdb, log: log}
}

// cachedProject is the serialization format for cached projects.
type cachedProject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *RedisProjectCache) Get(ctx context.Context, id string) (*domain.Project, error) {
	data, err := c.rdb.Get(ctx, projectCachePrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project from cache: %w", err)
	}

	var cp cachedProject
	if err := json.Unmarshal(data, &cp); err != nil {
		// A corrupt entry behaves like a miss; the next Set repairs it.
		c.log.Warn("Dropping corrupt project cache entry",
			zap.String("project_id", id), zap.Error(err))
		return nil, nil
	}

	return &domain.Project{
		ID:        cp.ID,
		Name:      cp.Name,
		UserID:    cp.UserID,
		CreatedAt: cp.CreatedAt,
	}, nil
}

func (c *RedisProjectCache) Set(ctx context.Context, project *domain.Project) error {
	data, err := json.Marshal(cachedProject{
		ID:        project.ID,
		Name:      project.Name,
		UserID:    project.UserID,
		CreatedAt: project.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal project for cache: %w", err)
	}

	if err := c.rdb.Set(ctx, projectCachePrefix+project.ID, data, projectCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write project to cache: %w", err)
	}
	return nil
}

func (c *RedisProjectCache) Invalidate(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, projectCachePrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached project: %w", err)
	}
	return nil
}

// noopProjectCache is used when Redis is not configured.
type noopProjectCache struct{}

func (noopProjectCache) Get(context.Context, string) (*domain.Project, error) { return nil, nil }
func (noopProjectCache) Set(context.Context, *domain.Project) error           { return nil }
func (noopProjectCache) Invalidate(context.Context, string) error             { return nil }
