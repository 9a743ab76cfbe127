package memory

import (
	"context"
	"sync"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

// BoardStore is an in-memory implementation of app.BoardRepository.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore() *BoardStore {
	return &BoardStore{
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(quizID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[quizID]; ok {
		return board
	}
	board := app.NewBoard(quizID)
	s.boards[quizID] = board
	return board
}

func (s *BoardStore) Get(quizID string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[quizID]
	return board, ok
}

func (s *BoardStore) DeleteIfIdle(quizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[quizID]
	if !ok {
		return
	}
	if board.IsIdle() {
		delete(s.boards, quizID)
	}
}

// Announce records the result on the quiz's board if one is open.
func (s *BoardStore) Announce(_ context.Context, result domain.ResultRecord) {
	if board, ok := s.Get(result.QuizID); ok {
		board.Record(result)
	}
}
