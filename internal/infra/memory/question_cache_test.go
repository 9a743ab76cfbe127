package memory

import (
	"context"
	"testing"
	"time"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingBank{QuestionBank: sampleStore(t)}
	cache := NewQuestionCache(loader, time.Minute)

	records, err := cache.Resolve(context.Background(), []string{"q1", "q2"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.Resolve(context.Background(), []string{"q2", "q1"}); err != nil {
		t.Fatalf("resolve 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheLoadsOnlyMisses(t *testing.T) {
	loader := &countingBank{QuestionBank: sampleStore(t)}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.Resolve(context.Background(), []string{"q1"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	records, err := cache.Resolve(context.Background(), []string{"q1", "q2", "missing"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected unknown id to be omitted, got %+v", records)
	}
	if got := loader.lastIDs; len(got) != 2 || got[0] != "q2" || got[1] != "missing" {
		t.Fatalf("expected only misses to be loaded, got %v", got)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	loader := &countingBank{QuestionBank: sampleStore(t)}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, _ = cache.Resolve(context.Background(), []string{"q1"})
	now = now.Add(2 * time.Minute)
	_, _ = cache.Resolve(context.Background(), []string{"q1"})
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

type countingBank struct {
	app.QuestionBank
	calls   int
	lastIDs []string
}

func (b *countingBank) Resolve(ctx context.Context, ids []string) ([]domain.QuestionRecord, error) {
	b.calls++
	b.lastIDs = ids
	return b.QuestionBank.Resolve(ctx, ids)
}

func sampleStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	err := store.CreateQuiz(context.Background(), domain.Quiz{ID: "quiz-1", Title: "Go basics", QuestionCount: 2}, []domain.Question{
		{ID: "q1", QuizID: "quiz-1", Question: "What is 2 + 2?", Options: [4]string{"3", "4", "5", "6"}, Answer: "B"},
		{ID: "q2", QuizID: "quiz-1", Question: "Which keyword starts a goroutine?", Options: [4]string{"go", "run", "async", "spawn"}, Answer: "A"},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}
