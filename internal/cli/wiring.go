package cli

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/classifier"
	"quiz-analysis-service/internal/config"
	"quiz-analysis-service/internal/domain"
	"quiz-analysis-service/internal/infra/memory"
	pgstore "quiz-analysis-service/internal/infra/postgres"
	redisinfra "quiz-analysis-service/internal/infra/redis"
)

// services holds the wired use cases plus whatever needs closing on exit.
type services struct {
	quizzes     *app.QuizService
	submissions *app.SubmissionService
	durable     bool
	closers     []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type store interface {
	app.QuizStore
	app.QuestionBank
	app.ResultStore
}

// buildServices picks Postgres and Redis backed adapters when configured and
// falls back to in-memory ones otherwise.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}

	var st store
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, pool.Close)
		st = pgstore.NewStore(pool)
		svc.durable = true
	} else {
		mem := memory.NewStore()
		if err := seedSampleQuiz(ctx, mem); err != nil {
			return nil, err
		}
		st = mem
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = redisClient.Close() })
	}
	cacheTTL := config.Duration(cfg.Questions.CacheTTL, 10*time.Minute)

	var (
		bank     app.QuestionBank
		boards   app.BoardRepository
		liveness classifier.LivenessCache
	)
	if redisClient != nil {
		bank = redisinfra.NewQuestionCache(redisClient, st, cacheTTL)
		redisBoards := redisinfra.NewBoardStore(redisClient)
		svc.closers = append(svc.closers, redisBoards.Close)
		boards = redisBoards
		liveness = redisinfra.NewLivenessCache(redisClient)
	} else {
		bank = memory.NewQuestionCache(st, cacheTTL)
		boards = memory.NewBoardStore()
		liveness = memory.NewLivenessCache()
	}

	var topics app.TopicClassifier
	if cfg.Classifier.BaseURL != "" {
		topics = classifier.NewClient(classifier.Config{
			BaseURL:      cfg.Classifier.BaseURL,
			Timeout:      config.Duration(cfg.Classifier.Timeout, 10*time.Second),
			ProbeTimeout: config.Duration(cfg.Classifier.ProbeTimeout, 2*time.Second),
			LivenessTTL:  config.Duration(cfg.Classifier.LivenessTTL, 30*time.Second),
		}, liveness)
	} else {
		log.Printf("classifier url not configured; results will carry no category breakdown")
	}

	svc.quizzes = app.NewQuizService(st, st, boards)
	svc.submissions = app.NewSubmissionService(st, bank, topics, st, boards)
	return svc, nil
}

// seedSampleQuiz gives the in-memory store something to serve; run with a
// postgres url for real data.
func seedSampleQuiz(ctx context.Context, st *memory.Store) error {
	quiz := domain.Quiz{
		ID:            "quiz-1",
		Title:         "General knowledge",
		TimeLimit:     5,
		QuestionCount: 3,
		Score:         3,
		Difficulty:    1,
		CreatedAt:     time.Now().UTC(),
	}
	questions := []domain.Question{
		{ID: "q1", QuizID: quiz.ID, Question: "What is 2 + 2?", Options: [4]string{"3", "4", "5", "22"}, Answer: "B"},
		{ID: "q2", QuizID: quiz.ID, Question: "Which planet is known as the red planet?", Options: [4]string{"Mars", "Venus", "Jupiter", "Mercury"}, Answer: "A"},
		{ID: "q3", QuizID: quiz.ID, Question: "What gas do plants absorb from the air?", Options: [4]string{"Oxygen", "Nitrogen", "Carbon dioxide", "Helium"}, Answer: "C"},
	}
	return st.CreateQuiz(ctx, quiz, questions)
}
