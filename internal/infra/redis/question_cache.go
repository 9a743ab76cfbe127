package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

// QuestionCache caches question records in Redis and falls back to a loader on cache miss.
// Records are stored as JSON: SET quiz:question:{questionID} {"id","question","answer"}
type QuestionCache struct {
	client *redis.Client
	loader app.QuestionBank
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionCache(client *redis.Client, loader app.QuestionBank, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (c *QuestionCache) Resolve(ctx context.Context, ids []string) ([]domain.QuestionRecord, error) {
	if len(ids) == 0 {
		return []domain.QuestionRecord{}, nil
	}
	found, missing := c.lookup(ctx, ids)
	if len(missing) == 0 {
		return found, nil
	}

	result, err, _ := c.sf.Do(strings.Join(missing, ","), func() (interface{}, error) {
		records, err := c.loader.Resolve(ctx, missing)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for _, record := range records {
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			pipe.Set(ctx, c.key(record.ID), data, c.ttlWithJitter())
		}
		// best-effort fill; a failed write only costs a later miss
		_, _ = pipe.Exec(ctx)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return append(found, result.([]domain.QuestionRecord)...), nil
}

// lookup reads cached records. Redis errors are treated as misses.
func (c *QuestionCache) lookup(ctx context.Context, ids []string) ([]domain.QuestionRecord, []string) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return []domain.QuestionRecord{}, ids
	}

	found := make([]domain.QuestionRecord, 0, len(ids))
	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var record domain.QuestionRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil || record.ID != ids[i] {
			missing = append(missing, ids[i])
			continue
		}
		found = append(found, record)
	}
	return found, missing
}

func (c *QuestionCache) key(questionID string) string {
	return "quiz:question:" + questionID
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
