package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-analysis-service/internal/domain"
)

// Store keeps quizzes, questions and results as JSONB documents in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz, questions []domain.Question) error {
	quizData, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO quizzes (id, data, created_at) VALUES ($1, $2, $3)`, quiz.ID, quizData, quiz.CreatedAt); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	batch := &pgx.Batch{}
	for i, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %d: %w", i+1, err)
		}
		batch.Queue(`INSERT INTO questions (id, quiz_id, position, data) VALUES ($1, $2, $3, $4)`, q.ID, quiz.ID, i, data)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range questions {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.getDocument(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID, &quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("quiz %q: %w", quizID, err)
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return listDocuments[domain.Quiz](ctx, s.pool, `SELECT data FROM quizzes ORDER BY created_at, id`)
}

func (s *Store) SampleQuestions(ctx context.Context, quizID string, n int) ([]domain.Question, error) {
	return listDocuments[domain.Question](ctx, s.pool, `SELECT data FROM questions WHERE quiz_id=$1 ORDER BY random() LIMIT $2`, quizID, n)
}

// Resolve implements app.QuestionBank; unknown ids are omitted.
func (s *Store) Resolve(ctx context.Context, ids []string) ([]domain.QuestionRecord, error) {
	questions, err := listDocuments[domain.Question](ctx, s.pool, `SELECT data FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	records := make([]domain.QuestionRecord, len(questions))
	for i, q := range questions {
		records[i] = q.Record()
	}
	return records, nil
}

func (s *Store) CreateResult(ctx context.Context, result domain.ResultRecord) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO results (id, quiz_id, data) VALUES ($1, $2, $3)`, result.ID, result.QuizID, data); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) FindResult(ctx context.Context, id string) (domain.ResultRecord, error) {
	var result domain.ResultRecord
	if err := s.getDocument(ctx, `SELECT data FROM results WHERE id=$1`, id, &result); err != nil {
		return domain.ResultRecord{}, fmt.Errorf("result %q: %w", id, err)
	}
	return result, nil
}

func (s *Store) ListResultsByQuiz(ctx context.Context, quizID string) ([]domain.ResultRecord, error) {
	return listDocuments[domain.ResultRecord](ctx, s.pool, `SELECT data FROM results WHERE quiz_id=$1 ORDER BY created_at, id`, quizID)
}

func (s *Store) getDocument(ctx context.Context, query, id string, dst any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}

func listDocuments[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
