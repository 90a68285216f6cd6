package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetByID retrieves a quiz by its UUID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	var settings []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, owner_id, settings, created_at, updated_at
		 FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.Name, &q.Description, &q.OwnerID, &settings, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &q.Settings); err != nil {
		return nil, fmt.Errorf("decode quiz settings: %w", err)
	}
	return q, nil
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	settings, err := json.Marshal(q.Settings)
	if err != nil {
		return fmt.Errorf("encode quiz settings: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (name, description, owner_id, settings)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		q.Name, q.Description, q.OwnerID, settings,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces a quiz's name, description, and settings.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	settings, err := json.Marshal(q.Settings)
	if err != nil {
		return fmt.Errorf("encode quiz settings: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET name = $1, description = $2, settings = $3, updated_at = NOW()
		 WHERE id = $4`,
		q.Name, q.Description, settings, q.ID)
	return err
}

// Delete removes a quiz. Questions and attempts cascade.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

// ListPaginated retrieves quizzes with pagination and optional name search.
// Pass ownerID == uuid.Nil to list quizzes from all owners.
func (r *QuizRepository) ListPaginated(ctx context.Context, ownerID uuid.UUID, limit, offset int, search string) ([]model.Quiz, int, error) {
	where := ""
	args := []any{}

	if ownerID != uuid.Nil {
		args = append(args, ownerID)
		where = fmt.Sprintf(" WHERE owner_id = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		if where == "" {
			where = fmt.Sprintf(" WHERE name ILIKE $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quizzes"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, description, owner_id, settings, created_at, updated_at
	          FROM quizzes` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		var settings []byte
		if err := rows.Scan(&q.ID, &q.Name, &q.Description, &q.OwnerID, &settings, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(settings, &q.Settings); err != nil {
			return nil, 0, fmt.Errorf("decode quiz settings: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, total, rows.Err()
}
