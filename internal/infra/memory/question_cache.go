package memory

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

// QuestionCache caches question records with TTL to avoid repeated DB hits.
// Records are immutable once authored, so entries never need invalidation.
type QuestionCache struct {
	loader app.QuestionBank
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedRecord
}

type cachedRecord struct {
	record    domain.QuestionRecord
	expiresAt time.Time
}

func NewQuestionCache(loader app.QuestionBank, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedRecord),
	}
}

func (c *QuestionCache) Resolve(ctx context.Context, ids []string) ([]domain.QuestionRecord, error) {
	found, missing := c.lookup(ids)
	if len(missing) == 0 {
		return found, nil
	}

	result, err, _ := c.sf.Do(strings.Join(missing, ","), func() (interface{}, error) {
		records, err := c.loader.Resolve(ctx, missing)
		if err != nil {
			return nil, err
		}

		now := c.clock()
		c.mu.Lock()
		for _, record := range records {
			c.cache[record.ID] = cachedRecord{
				record:    record,
				expiresAt: now.Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return append(found, result.([]domain.QuestionRecord)...), nil
}

func (c *QuestionCache) lookup(ids []string) ([]domain.QuestionRecord, []string) {
	now := c.clock()
	found := make([]domain.QuestionRecord, 0, len(ids))
	var missing []string

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range ids {
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			found = append(found, entry.record)
			continue
		}
		missing = append(missing, id)
	}
	return found, missing
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
