package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quiz-analysis-service/internal/domain"
)

// TopicClassifier classifies the correctly and incorrectly answered sets.
type TopicClassifier interface {
	Classify(ctx context.Context, correct, incorrect []domain.QuestionRecord) (domain.TopicAnalysis, error)
}

// SubmitOutcome is returned to the submitting user.
type SubmitOutcome struct {
	ResultID   string                `json:"resultId"`
	Score      int                   `json:"score"`
	Percentage float64               `json:"percentage"`
	Analysis   domain.AnalysisStatus `json:"analysis"`
}

// SubmissionService runs the grading pipeline for a single submission:
// resolve, score, classify, merge and persist.
type SubmissionService struct {
	quizzes    QuizStore
	resolver   *AnswerResolver
	classifier TopicClassifier
	assembler  *ResultAssembler
	boards     BoardRepository
}

// NewSubmissionService wires the pipeline. classifier and boards may be nil:
// without a classifier results carry no breakdown, without boards nothing is
// pushed to dashboards.
func NewSubmissionService(quizzes QuizStore, bank QuestionBank, classifier TopicClassifier, results ResultStore, boards BoardRepository) *SubmissionService {
	return &SubmissionService{
		quizzes:    quizzes,
		resolver:   NewAnswerResolver(bank),
		classifier: classifier,
		assembler:  NewResultAssembler(results),
		boards:     boards,
	}
}

// Submit grades and persists a submission. Classification problems never
// discard the score; they are reported through the outcome's analysis status.
func (s *SubmissionService) Submit(ctx context.Context, sub domain.Submission) (SubmitOutcome, error) {
	if sub.QuizID == "" {
		return SubmitOutcome{}, fmt.Errorf("%w: missing quiz id", domain.ErrMalformedSubmission)
	}
	if err := sub.Answers.Validate(); err != nil {
		return SubmitOutcome{}, err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return SubmitOutcome{}, err
	}

	records, err := s.resolver.Resolve(ctx, sub.QuizID, sub.Answers)
	if err != nil {
		return SubmitOutcome{}, err
	}
	scored, err := Score(sub.Answers, records)
	if err != nil {
		return SubmitOutcome{}, err
	}

	total := quiz.QuestionCount
	if total <= 0 {
		total = len(sub.Answers)
	}
	if scored.Score > total {
		return SubmitOutcome{}, fmt.Errorf("%w: score %d exceeds quiz total %d", domain.ErrMalformedSubmission, scored.Score, total)
	}

	status, breakdown := s.analyze(ctx, sub.QuizID, scored)
	result, err := s.assembler.Assemble(ctx, ResultInput{
		QuizID:         sub.QuizID,
		UserID:         sub.UserID,
		UserName:       sub.UserName,
		Score:          scored.Score,
		TotalScore:     total,
		CompletedAt:    sub.CompletedAt,
		TimeSpent:      sub.TimeSpent,
		AnalysisStatus: status,
		Breakdown:      breakdown,
	})
	if err != nil {
		return SubmitOutcome{}, err
	}

	if s.boards != nil {
		s.boards.Announce(ctx, result)
	}

	return SubmitOutcome{
		ResultID:   result.ID,
		Score:      result.Score,
		Percentage: result.Percentage,
		Analysis:   status,
	}, nil
}

func (s *SubmissionService) analyze(ctx context.Context, quizID string, scored Scored) (domain.AnalysisStatus, []domain.CategoryStat) {
	if s.classifier == nil {
		return domain.AnalysisUnavailable, []domain.CategoryStat{}
	}

	analysis, err := s.classifier.Classify(ctx, scored.Correct, scored.Incorrect)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrServiceUnavailable):
		log.Printf("quiz %s: topic analysis skipped: %v", quizID, err)
		return domain.AnalysisUnavailable, []domain.CategoryStat{}
	default:
		log.Printf("quiz %s: topic analysis failed: %v", quizID, err)
		return domain.AnalysisFailed, []domain.CategoryStat{}
	}

	status := domain.AnalysisComplete
	if analysis.Partial {
		log.Printf("quiz %s: topic analysis degraded to one side", quizID)
		status = domain.AnalysisPartial
	}
	return status, MergeCategories(analysis.Correct, analysis.Incorrect)
}
