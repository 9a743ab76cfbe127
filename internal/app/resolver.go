package app

import (
	"context"
	"fmt"

	"quiz-analysis-service/internal/domain"
)

// QuestionBank looks up question records by id. Implementations may return
// records in any order but must omit ids they do not know.
type QuestionBank interface {
	Resolve(ctx context.Context, ids []string) ([]domain.QuestionRecord, error)
}

// AnswerResolver fetches the canonical records needed to grade a submission.
//
// The returned records are aligned with the submission: record i carries the
// id of answers[i]. The scorer pairs answers and records by position, so this
// ordering is load-bearing.
type AnswerResolver struct {
	bank QuestionBank
}

func NewAnswerResolver(bank QuestionBank) *AnswerResolver {
	return &AnswerResolver{bank: bank}
}

// Resolve returns one record per submitted answer in submission order, or
// domain.ErrNotFound if any id is unknown or belongs to another quiz.
func (r *AnswerResolver) Resolve(ctx context.Context, quizID string, answers domain.Answers) ([]domain.QuestionRecord, error) {
	if len(answers) == 0 {
		return []domain.QuestionRecord{}, nil
	}
	ids := answers.IDs()
	found, err := r.bank.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve questions: %w", err)
	}

	byID := make(map[string]domain.QuestionRecord, len(found))
	for _, record := range found {
		byID[record.ID] = record
	}

	records := make([]domain.QuestionRecord, 0, len(ids))
	for _, id := range ids {
		record, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("question %q: %w", id, domain.ErrNotFound)
		}
		if record.QuizID != quizID {
			return nil, fmt.Errorf("question %q in quiz %q: %w", id, quizID, domain.ErrNotFound)
		}
		records = append(records, record)
	}
	return records, nil
}
