package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"quiz-analysis-service/internal/domain"
)

// ResultStore persists graded results.
type ResultStore interface {
	CreateResult(ctx context.Context, result domain.ResultRecord) error
	FindResult(ctx context.Context, id string) (domain.ResultRecord, error)
	ListResultsByQuiz(ctx context.Context, quizID string) ([]domain.ResultRecord, error)
}

// ResultInput carries everything the assembler needs to build a result.
type ResultInput struct {
	QuizID         string
	UserID         string
	UserName       string
	Score          int
	TotalScore     int
	CompletedAt    time.Time
	TimeSpent      int
	AnalysisStatus domain.AnalysisStatus
	Breakdown      []domain.CategoryStat
}

// ResultAssembler builds and persists result records. Every call creates a
// new record, duplicate submissions included.
type ResultAssembler struct {
	store ResultStore
	newID func() string
}

func NewResultAssembler(store ResultStore) *ResultAssembler {
	return &ResultAssembler{store: store, newID: uuid.NewString}
}

// Assemble persists a result built from in and returns it.
func (a *ResultAssembler) Assemble(ctx context.Context, in ResultInput) (domain.ResultRecord, error) {
	if in.Score < 0 || (in.TotalScore > 0 && in.Score > in.TotalScore) {
		return domain.ResultRecord{}, fmt.Errorf("%w: score %d exceeds total %d", domain.ErrMalformedSubmission, in.Score, in.TotalScore)
	}
	breakdown := in.Breakdown
	if breakdown == nil {
		breakdown = []domain.CategoryStat{}
	}

	result := domain.ResultRecord{
		ID:                a.newID(),
		QuizID:            in.QuizID,
		UserID:            in.UserID,
		UserName:          in.UserName,
		Score:             in.Score,
		TotalScore:        in.TotalScore,
		Percentage:        ResultPercentage(in.Score, in.TotalScore),
		CompletedAt:       in.CompletedAt,
		TimeSpent:         in.TimeSpent,
		AnalysisStatus:    in.AnalysisStatus,
		CategoryBreakdown: breakdown,
	}
	if err := a.store.CreateResult(ctx, result); err != nil {
		return domain.ResultRecord{}, fmt.Errorf("%w: create result: %v", domain.ErrPersistence, err)
	}
	return result, nil
}

// ResultPercentage is round(100*score/total), 0 when total is not positive.
func ResultPercentage(score, total int) float64 {
	return math.Round(percentOf(score, total))
}
