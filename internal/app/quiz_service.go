package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-analysis-service/internal/domain"
)

// QuizStore holds quizzes and the questions authored for them.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz, questions []domain.Question) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	SampleQuestions(ctx context.Context, quizID string, n int) ([]domain.Question, error)
}

const (
	defaultQuestionCount = 20
	defaultDifficulty    = 1
)

// QuizDraft is an uploaded quiz before normalization.
type QuizDraft struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	TimeLimit     int              `json:"timelimit"`
	QuestionCount int              `json:"questionCount"`
	Score         int              `json:"score"`
	ImagePath     string           `json:"imagePath"`
	Difficulty    int              `json:"difficulty"`
	Rows          []map[string]any `json:"questions"`
}

// QuizService contains quiz authoring, quiz taking and result viewing use cases.
type QuizService struct {
	quizzes QuizStore
	results ResultStore
	boards  BoardRepository
	now     func() time.Time
	newID   func() string
}

func NewQuizService(quizzes QuizStore, results ResultStore, boards BoardRepository) *QuizService {
	return &QuizService{
		quizzes: quizzes,
		results: results,
		boards:  boards,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// CreateQuiz normalizes the uploaded rows and stores the quiz with its questions.
func (s *QuizService) CreateQuiz(ctx context.Context, draft QuizDraft) (string, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return "", fmt.Errorf("%w: quiz title is required", domain.ErrInvalidQuestion)
	}
	questions, err := NormalizeRows(draft.Rows)
	if err != nil {
		return "", err
	}

	quiz := domain.Quiz{
		ID:            s.newID(),
		Title:         strings.TrimSpace(draft.Title),
		Description:   draft.Description,
		TimeLimit:     draft.TimeLimit,
		QuestionCount: draft.QuestionCount,
		Score:         draft.Score,
		ImagePath:     draft.ImagePath,
		Difficulty:    draft.Difficulty,
		CreatedAt:     s.now().UTC(),
	}
	if quiz.QuestionCount <= 0 {
		quiz.QuestionCount = defaultQuestionCount
	}
	if quiz.Difficulty <= 0 {
		quiz.Difficulty = defaultDifficulty
	}
	for i := range questions {
		questions[i].ID = s.newID()
		questions[i].QuizID = quiz.ID
	}

	if err := s.quizzes.CreateQuiz(ctx, quiz, questions); err != nil {
		return "", fmt.Errorf("%w: create quiz: %v", domain.ErrPersistence, err)
	}
	return quiz.ID, nil
}

// ListQuizzes returns every quiz.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// FetchQuestions serves a random sample of the quiz's questions without answers.
func (s *QuizService) FetchQuestions(ctx context.Context, quizID string) (domain.QuizData, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizData{}, err
	}
	n := quiz.QuestionCount
	if n <= 0 {
		n = defaultQuestionCount
	}
	questions, err := s.quizzes.SampleQuestions(ctx, quizID, n)
	if err != nil {
		return domain.QuizData{}, err
	}

	views := make([]domain.QuestionView, len(questions))
	for i, q := range questions {
		views[i] = q.View()
	}
	return domain.QuizData{
		Title:          quiz.Title,
		TotalQuestions: quiz.QuestionCount,
		Duration:       quiz.TimeLimit,
		Score:          quiz.Score,
		Questions:      views,
	}, nil
}

// GetResult returns a stored result.
func (s *QuizService) GetResult(ctx context.Context, resultID string) (domain.ResultRecord, error) {
	return s.results.FindResult(ctx, resultID)
}

// ListResults returns every result of a quiz, tagged with the quiz title.
func (s *QuizService) ListResults(ctx context.Context, quizID string) ([]domain.ResultSummary, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListResultsByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ResultSummary, len(results))
	for i, r := range results {
		summaries[i] = domain.ResultSummary{
			ID:          r.ID,
			UserID:      r.UserID,
			UserName:    r.UserName,
			Score:       r.Score,
			TotalScore:  r.TotalScore,
			CompletedAt: r.CompletedAt,
			QuizTitle:   quiz.Title,
		}
	}
	return summaries, nil
}

// Watch subscribes to the live standings of a quiz. The board is seeded with
// stored results. The caller must invoke the returned cancel function.
func (s *QuizService) Watch(ctx context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, nil, err
	}
	results, err := s.results.ListResultsByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}

	board := s.boards.GetOrCreate(quizID)
	board.Record(results...)
	ch, cancel := board.Subscribe()
	return ch, func() {
		cancel()
		s.boards.DeleteIfIdle(quizID)
	}, nil
}
