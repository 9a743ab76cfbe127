package memory

import (
	"context"
	"sync"
	"time"
)

// LivenessCache remembers the last successful classifier probe until it expires.
type LivenessCache struct {
	mu        sync.Mutex
	clock     func() time.Time
	expiresAt time.Time
}

func NewLivenessCache() *LivenessCache {
	return &LivenessCache{clock: time.Now}
}

func (c *LivenessCache) Alive(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiresAt.After(c.clock())
}

func (c *LivenessCache) MarkAlive(_ context.Context, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiresAt = c.clock().Add(ttl)
}
