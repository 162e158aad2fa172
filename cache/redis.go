package cache

import (
	"context"
	"fmt"
	"time"

	"musicfy/config"

	"github.com/go-redis/redis/v8"
)

// Connect creates and pings a redis client. The client is handed back to
// the caller for injection; callers that run without redis pass nil to the
// caches, which then fall through to the database.
func Connect(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
