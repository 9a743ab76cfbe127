package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-analysis-service/internal/domain"
)

// BoardRepository abstracts where live result boards are kept (in-memory, Redis, etc).
// Announce delivers a stored result to every open board of its quiz.
type BoardRepository interface {
	GetOrCreate(quizID string) *Board
	Get(quizID string) (*Board, bool)
	DeleteIfIdle(quizID string)
	Announce(ctx context.Context, result domain.ResultRecord)
}

// Board is the live standings of one quiz, fanned out to dashboard subscribers.
type Board struct {
	quizID      string
	now         func() time.Time
	mu          sync.RWMutex
	entries     map[string]domain.LeaderboardEntry
	subscribers map[chan domain.Leaderboard]struct{}
}

// NewBoard is exported for infrastructure layers that keep boards.
func NewBoard(quizID string) *Board {
	return NewBoardWithClock(quizID, time.Now)
}

// NewBoardWithClock allows deterministic timestamps in tests.
func NewBoardWithClock(quizID string, now func() time.Time) *Board {
	return &Board{
		quizID:      quizID,
		now:         now,
		entries:     make(map[string]domain.LeaderboardEntry),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Record adds results to the board and pushes the new standings.
// Results already on the board are replaced, so seeding is idempotent.
func (b *Board) Record(results ...domain.ResultRecord) domain.Leaderboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range results {
		b.entries[r.ID] = domain.LeaderboardEntry{
			ResultID:    r.ID,
			UserID:      r.UserID,
			UserName:    r.UserName,
			Score:       r.Score,
			Percentage:  r.Percentage,
			CompletedAt: r.CompletedAt,
		}
	}
	return b.broadcastLocked()
}

// Snapshot returns the current standings without notifying subscribers.
func (b *Board) Snapshot() domain.Leaderboard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// IsIdle reports whether nobody is watching the board.
func (b *Board) IsIdle() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers) == 0
}

// Subscribe returns a channel of standings updates, primed with the current
// snapshot. The caller must invoke cancel to avoid leaks.
func (b *Board) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	b.mu.Lock()
	ch <- b.snapshotLocked()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Board) broadcastLocked() domain.Leaderboard {
	lb := b.snapshotLocked()
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			// slow subscriber: drop its oldest update
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- lb:
			default:
			}
		}
	}
	return lb
}

func (b *Board) snapshotLocked() domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		entries = append(entries, entry)
	}

	// score desc, then earliest completion, then name, then result id
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].CompletedAt.Before(entries[j].CompletedAt)
		}
		if entries[i].UserName != entries[j].UserName {
			return entries[i].UserName < entries[j].UserName
		}
		return entries[i].ResultID < entries[j].ResultID
	})

	return domain.Leaderboard{
		QuizID:    b.quizID,
		Entries:   entries,
		UpdatedAt: b.now(),
	}
}
