package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// AttemptRepository handles completed attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a completed attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode attempt answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (quiz_id, user_id, user_name, user_photo_url, answers, correct_answers, total_questions, percentage, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.QuizID, a.UserID, a.UserName, a.UserPhotoURL, answers, a.CorrectAnswers, a.TotalQuestions, a.Percentage, a.CompletedAt,
	).Scan(&a.ID)
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, user_id, user_name, user_photo_url, answers, correct_answers, total_questions, percentage, completed_at
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.QuizID, &a.UserID, &a.UserName, &a.UserPhotoURL, &answers, &a.CorrectAnswers, &a.TotalQuestions, &a.Percentage, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode attempt answers: %w", err)
	}
	return a, nil
}

// ListByQuiz retrieves every attempt of a quiz, newest first.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Attempt, error) {
	return r.list(ctx,
		`SELECT id, quiz_id, user_id, user_name, user_photo_url, answers, correct_answers, total_questions, percentage, completed_at
		 FROM attempts WHERE quiz_id = $1
		 ORDER BY completed_at DESC`, quizID)
}

// ListByQuizAndUser retrieves one user's attempts of a quiz, newest first.
func (r *AttemptRepository) ListByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) ([]model.Attempt, error) {
	return r.list(ctx,
		`SELECT id, quiz_id, user_id, user_name, user_photo_url, answers, correct_answers, total_questions, percentage, completed_at
		 FROM attempts WHERE quiz_id = $1 AND user_id = $2
		 ORDER BY completed_at DESC`, quizID, userID)
}

// HasCompleted reports whether a user has at least one attempt on a quiz.
func (r *AttemptRepository) HasCompleted(ctx context.Context, quizID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM attempts WHERE quiz_id = $1 AND user_id = $2)`,
		quizID, userID).Scan(&exists)
	return exists, err
}

// Delete removes a single attempt.
func (r *AttemptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attempts WHERE id = $1`, id)
	return err
}

// DeleteByQuiz removes every attempt of a quiz.
func (r *AttemptRepository) DeleteByQuiz(ctx context.Context, quizID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attempts WHERE quiz_id = $1`, quizID)
	return err
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...any) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a := model.Attempt{}
		var answers []byte
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.UserName, &a.UserPhotoURL, &answers, &a.CorrectAnswers, &a.TotalQuestions, &a.Percentage, &a.CompletedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode attempt answers: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
