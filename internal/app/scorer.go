package app

import (
	"fmt"

	"quiz-analysis-service/internal/domain"
)

// Scored is the outcome of grading one submission.
type Scored struct {
	Score     int
	Correct   []domain.QuestionRecord
	Incorrect []domain.QuestionRecord
}

// Graded is the number of questions that were compared.
func (s Scored) Graded() int {
	return len(s.Correct) + len(s.Incorrect)
}

// Score grades answers against records by position: answers[i] is compared
// with records[i]. Iteration follows the answers; running out of records is
// a malformed submission.
func Score(answers domain.Answers, records []domain.QuestionRecord) (Scored, error) {
	out := Scored{
		Correct:   []domain.QuestionRecord{},
		Incorrect: []domain.QuestionRecord{},
	}
	for i, answer := range answers {
		if i >= len(records) {
			return Scored{}, fmt.Errorf("%w: %d answers but only %d questions", domain.ErrMalformedSubmission, len(answers), len(records))
		}
		record := records[i]
		if idx, ok := domain.LetterIndex(record.Answer); ok && idx == answer.OptionIndex {
			out.Score++
			out.Correct = append(out.Correct, record)
		} else {
			out.Incorrect = append(out.Incorrect, record)
		}
	}
	return out, nil
}
