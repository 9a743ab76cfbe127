package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"quiz-analysis-service/internal/domain"
)

// Store is an in-memory quiz, question and result store (useful for tests/demos).
type Store struct {
	mu            sync.RWMutex
	quizzes       map[string]domain.Quiz
	questions     map[string]domain.Question
	quizQuestions map[string][]string
	results       map[string]domain.ResultRecord
	quizResults   map[string][]string
}

func NewStore() *Store {
	return &Store{
		quizzes:       make(map[string]domain.Quiz),
		questions:     make(map[string]domain.Question),
		quizQuestions: make(map[string][]string),
		results:       make(map[string]domain.ResultRecord),
		quizResults:   make(map[string][]string),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.quizzes[quiz.ID]; exists {
		return fmt.Errorf("quiz %q already exists", quiz.ID)
	}
	s.quizzes[quiz.ID] = quiz
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		s.questions[q.ID] = q
		ids = append(ids, q.ID)
	}
	s.quizQuestions[quiz.ID] = ids
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, fmt.Errorf("quiz %q: %w", quizID, domain.ErrNotFound)
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	s.mu.RUnlock()

	sort.Slice(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
	return quizzes, nil
}

func (s *Store) SampleQuestions(_ context.Context, quizID string, n int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.quizQuestions[quizID]
	if n > len(ids) {
		n = len(ids)
	}
	sample := make([]domain.Question, 0, n)
	for _, i := range rand.Perm(len(ids))[:n] {
		sample = append(sample, s.questions[ids[i]])
	}
	return sample, nil
}

// Resolve implements app.QuestionBank; unknown ids are omitted.
func (s *Store) Resolve(_ context.Context, ids []string) ([]domain.QuestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.QuestionRecord, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			records = append(records, q.Record())
		}
	}
	return records, nil
}

func (s *Store) CreateResult(_ context.Context, result domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[result.ID]; exists {
		return fmt.Errorf("result %q already exists", result.ID)
	}
	s.results[result.ID] = result
	s.quizResults[result.QuizID] = append(s.quizResults[result.QuizID], result.ID)
	return nil
}

func (s *Store) FindResult(_ context.Context, id string) (domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return domain.ResultRecord{}, fmt.Errorf("result %q: %w", id, domain.ErrNotFound)
	}
	return result, nil
}

func (s *Store) ListResultsByQuiz(_ context.Context, quizID string) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.quizResults[quizID]
	results := make([]domain.ResultRecord, 0, len(ids))
	for _, id := range ids {
		results = append(results, s.results[id])
	}
	return results, nil
}
