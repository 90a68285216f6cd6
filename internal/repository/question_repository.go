package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var options []byte
	if err := row.Scan(&q.ID, &q.QuizID, &q.Type, &q.Text, &options, &q.CorrectAnswer, &q.BlankAnswer, &q.Position, &q.CreatedAt); err != nil {
		return nil, err
	}
	if options != nil {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}
	}
	return q, nil
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, type, question, options, correct_answer, blank_answer, position, created_at
		 FROM questions WHERE id = $1`, id))
}

// ListByQuiz retrieves all questions of a quiz in play order.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, type, question, options, correct_answer, blank_answer, position, created_at
		 FROM questions WHERE quiz_id = $1
		 ORDER BY position ASC, created_at ASC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q := model.Question{}
		var options []byte
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Type, &q.Text, &options, &q.CorrectAnswer, &q.BlankAnswer, &q.Position, &q.CreatedAt); err != nil {
			return nil, err
		}
		if options != nil {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("decode question options: %w", err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := marshalOptions(q.Options)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, type, question, options, correct_answer, blank_answer, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		q.QuizID, q.Type, q.Text, options, q.CorrectAnswer, q.BlankAnswer, q.Position,
	).Scan(&q.ID, &q.CreatedAt)
}

// CreateBatch inserts multiple questions in a single round trip. Used by the
// import path after per-question validation has already accepted them.
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		options, err := marshalOptions(q.Options)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO questions (quiz_id, type, question, options, correct_answer, blank_answer, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.QuizID, q.Type, q.Text, options, q.CorrectAnswer, q.BlankAnswer, q.Position)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range questions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Update replaces a question's content.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	options, err := marshalOptions(q.Options)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE questions
		 SET type = $1, question = $2, options = $3, correct_answer = $4, blank_answer = $5, position = $6
		 WHERE id = $7`,
		q.Type, q.Text, options, q.CorrectAnswer, q.BlankAnswer, q.Position, q.ID)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// MaxPosition returns the highest position in a quiz, or -1 when it has none.
func (r *QuestionRepository) MaxPosition(ctx context.Context, quizID uuid.UUID) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM questions WHERE quiz_id = $1`, quizID).Scan(&max)
	return max, err
}

func marshalOptions(options []string) ([]byte, error) {
	if options == nil {
		return nil, nil
	}
	b, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode question options: %w", err)
	}
	return b, nil
}
