package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/repository"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrNotQuizOwner = errors.New("not the owner of this quiz")
	ErrNoQuestions  = errors.New("quiz has no questions")
)

// QuizService handles quiz business logic and the Redis play-payload cache.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetByID retrieves a quiz by its UUID.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

// List retrieves quizzes with pagination and optional name search. Pass
// ownerID == uuid.Nil to list quizzes from all owners.
func (s *QuizService) List(ctx context.Context, ownerID uuid.UUID, page, perPage int, search string) ([]model.Quiz, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	quizzes, total, err := s.quizRepo.ListPaginated(ctx, ownerID, limit, offset, search)
	if err != nil {
		return nil, nil, err
	}

	if quizzes == nil {
		quizzes = []model.Quiz{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return quizzes, pagination, nil
}

// Create inserts a new quiz owned by ownerID.
func (s *QuizService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
		Settings:    req.Settings,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// Update modifies a quiz. Only the owner may update.
func (s *QuizService) Update(ctx context.Context, quizID, userID uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != userID {
		return nil, ErrNotQuizOwner
	}

	if req.Name != "" {
		quiz.Name = req.Name
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Settings != nil {
		if err := req.Settings.Validate(); err != nil {
			return nil, err
		}
		quiz.Settings = *req.Settings
	}

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}

	s.InvalidatePayload(ctx, quizID)
	return quiz, nil
}

// Delete removes a quiz, its questions, and its attempts. Only the owner may
// delete.
func (s *QuizService) Delete(ctx context.Context, quizID, userID uuid.UUID) error {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.OwnerID != userID {
		return ErrNotQuizOwner
	}

	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}

	s.rdb.Del(ctx,
		config.CacheKey.QuizPayloadKey(quizID.String()),
		config.CacheKey.LeaderboardKey(quizID.String()))
	return nil
}

// GetPlayPayload returns the player-facing quiz view: settings plus questions
// with answers stripped. Served from Redis when cached, rebuilt on miss.
func (s *QuizService) GetPlayPayload(ctx context.Context, quizID uuid.UUID) (*model.PlayPayload, error) {
	key := config.CacheKey.QuizPayloadKey(quizID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var payload model.PlayPayload
		if err := json.Unmarshal(data, &payload); err == nil {
			return &payload, nil
		}
		// Corrupt cache entry, fall through and rebuild.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache read failed")
	}

	return s.WarmPayloadCache(ctx, quizID)
}

// WarmPayloadCache builds the play payload from PostgreSQL and stores it in
// Redis. Used on cache misses and by the startup prewarm.
func (s *QuizService) WarmPayloadCache(ctx context.Context, quizID uuid.UUID) (*model.PlayPayload, error) {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	playerQuestions := make([]model.QuestionForPlayer, len(questions))
	for i := range questions {
		playerQuestions[i] = questions[i].ForPlayer()
	}

	payload := &model.PlayPayload{
		QuizID:        quiz.ID,
		Name:          quiz.Name,
		Description:   quiz.Description,
		Settings:      quiz.Settings,
		QuestionCount: len(questions),
		Questions:     playerQuestions,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuizPayloadKey(quizID.String()), data, 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache write failed")
	}

	s.log.Debug().
		Str("quiz_id", quizID.String()).
		Int("questions", len(questions)).
		Msg("Payload cache warmed")
	return payload, nil
}

// PrewarmAllCaches loads every quiz's play payload into Redis on startup so
// first players never hit a cold cache.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) error {
	quizzes, _, err := s.quizRepo.ListPaginated(ctx, uuid.Nil, 1000, 0, "")
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		s.log.Info().Msg("No quizzes to prewarm")
		return nil
	}

	warmed := 0
	for i := range quizzes {
		if _, err := s.WarmPayloadCache(ctx, quizzes[i].ID); err != nil {
			s.log.Warn().
				Err(err).
				Str("quiz_id", quizzes[i].ID.String()).
				Msg("Failed to warm quiz, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(quizzes)).
		Msg("Prewarming complete")
	return nil
}

// InvalidatePayload drops the cached play payload after quiz or question
// edits. The next reader rebuilds it.
func (s *QuizService) InvalidatePayload(ctx context.Context, quizID uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache invalidation failed")
	}
}
