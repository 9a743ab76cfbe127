package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const livenessKey = "classifier:alive"

// LivenessCache shares the last successful classifier probe across instances
// through a key that expires with the probe's TTL.
type LivenessCache struct {
	client *redis.Client
}

func NewLivenessCache(client *redis.Client) *LivenessCache {
	return &LivenessCache{client: client}
}

// Alive treats Redis errors as a cache miss.
func (c *LivenessCache) Alive(ctx context.Context) bool {
	n, err := c.client.Exists(ctx, livenessKey).Result()
	return err == nil && n > 0
}

func (c *LivenessCache) MarkAlive(ctx context.Context, ttl time.Duration) {
	_ = c.client.Set(ctx, livenessKey, "1", ttl).Err()
}
