package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

const subscribeTimeout = 5 * time.Second

// BoardStore keeps boards in process and fans stored results out over Redis
// pub/sub, so a result saved by any instance reaches the dashboards open on
// every instance. Each open board listens on quiz:board:{quizID}.
type BoardStore struct {
	client *redis.Client
	mu     sync.RWMutex
	boards map[string]*watchedBoard
}

type watchedBoard struct {
	board  *app.Board
	pubsub *redis.PubSub // nil when the subscription could not be made
}

func NewBoardStore(client *redis.Client) *BoardStore {
	return &BoardStore{
		client: client,
		boards: make(map[string]*watchedBoard),
	}
}

// GetOrCreate opens the quiz's board and subscribes it to announcements.
// If Redis is unreachable the board still works for results stored here.
func (s *BoardStore) GetOrCreate(quizID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.boards[quizID]; ok {
		return w.board
	}

	w := &watchedBoard{board: app.NewBoard(quizID)}
	ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
	defer cancel()
	pubsub := s.client.Subscribe(ctx, channel(quizID))
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("board %s: subscribe failed, only local results will show: %v", quizID, err)
		_ = pubsub.Close()
	} else {
		w.pubsub = pubsub
		go relay(quizID, w.board, pubsub.Channel())
	}
	s.boards[quizID] = w
	return w.board
}

func (s *BoardStore) Get(quizID string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.boards[quizID]
	if !ok {
		return nil, false
	}
	return w.board, true
}

// DeleteIfIdle drops the board and its subscription once nobody watches it.
func (s *BoardStore) DeleteIfIdle(quizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.boards[quizID]
	if !ok || !w.board.IsIdle() {
		return
	}
	delete(s.boards, quizID)
	if w.pubsub != nil {
		_ = w.pubsub.Close()
	}
}

// Announce publishes the result to every instance. The local board is
// updated directly when the publish fails or it has no subscription.
func (s *BoardStore) Announce(ctx context.Context, result domain.ResultRecord) {
	payload, err := json.Marshal(result)
	if err == nil {
		err = s.client.Publish(ctx, channel(result.QuizID), payload).Err()
	}
	if err != nil {
		log.Printf("quiz %s: board publish failed, updating local board only: %v", result.QuizID, err)
	}

	s.mu.RLock()
	w, ok := s.boards[result.QuizID]
	s.mu.RUnlock()
	if ok && (err != nil || w.pubsub == nil) {
		w.board.Record(result)
	}
}

// Close ends every board subscription.
func (s *BoardStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for quizID, w := range s.boards {
		if w.pubsub != nil {
			_ = w.pubsub.Close()
		}
		delete(s.boards, quizID)
	}
}

// relay runs until the subscription is closed.
func relay(quizID string, board *app.Board, msgs <-chan *redis.Message) {
	for msg := range msgs {
		var result domain.ResultRecord
		if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
			log.Printf("board %s: dropping undecodable announcement: %v", quizID, err)
			continue
		}
		board.Record(result)
	}
}

func channel(quizID string) string {
	return "quiz:board:" + quizID
}
