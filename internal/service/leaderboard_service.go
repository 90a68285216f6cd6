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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrAttemptNotFound indicates the attempt does not exist.
var ErrAttemptNotFound = errors.New("attempt not found")

// LeaderboardService computes quiz rankings and serves them through a Redis
// cache. The cache is refreshed by the background worker after each completed
// attempt and expires on its own as a safety net.
type LeaderboardService struct {
	attemptRepo *repository.AttemptRepository
	quizService *QuizService
	rdb         *redis.Client
	cfg         *config.Config
	log         zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	attemptRepo *repository.AttemptRepository,
	quizService *QuizService,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		attemptRepo: attemptRepo,
		quizService: quizService,
		rdb:         rdb,
		cfg:         cfg,
		log:         log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Get returns a quiz's ranking, served from Redis when cached.
func (s *LeaderboardService) Get(ctx context.Context, quizID uuid.UUID) ([]model.LeaderboardEntry, error) {
	key := config.CacheKey.LeaderboardKey(quizID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var entries []model.LeaderboardEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Leaderboard cache read failed")
	}

	return s.Refresh(ctx, quizID)
}

// Refresh recomputes a quiz's ranking from PostgreSQL and caches it.
func (s *LeaderboardService) Refresh(ctx context.Context, quizID uuid.UUID) ([]model.LeaderboardEntry, error) {
	if _, err := s.quizService.GetByID(ctx, quizID); err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	entries := model.BuildRanking(attempts)
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal leaderboard: %w", err)
	}
	key := config.CacheKey.LeaderboardKey(quizID.String())
	if err := s.rdb.Set(ctx, key, data, s.cfg.LeaderboardTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Leaderboard cache write failed")
	}

	return entries, nil
}

// ListAttempts returns a quiz's raw attempts. The owner sees every attempt,
// other users only their own.
func (s *LeaderboardService) ListAttempts(ctx context.Context, quizID, userID uuid.UUID) ([]model.Attempt, error) {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var attempts []model.Attempt
	if quiz.OwnerID == userID {
		attempts, err = s.attemptRepo.ListByQuiz(ctx, quizID)
	} else {
		attempts, err = s.attemptRepo.ListByQuizAndUser(ctx, quizID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

// DeleteAttempt removes a single attempt. Owner-only.
func (s *LeaderboardService) DeleteAttempt(ctx context.Context, quizID, attemptID, userID uuid.UUID) error {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.OwnerID != userID {
		return ErrNotQuizOwner
	}

	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("get attempt: %w", err)
	}
	if attempt.QuizID != quizID {
		return ErrAttemptNotFound
	}

	if err := s.attemptRepo.Delete(ctx, attemptID); err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}

	s.invalidate(ctx, quizID)
	return nil
}

// ResetAttempts removes every attempt of a quiz. Owner-only.
func (s *LeaderboardService) ResetAttempts(ctx context.Context, quizID, userID uuid.UUID) error {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.OwnerID != userID {
		return ErrNotQuizOwner
	}

	if err := s.attemptRepo.DeleteByQuiz(ctx, quizID); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}

	s.invalidate(ctx, quizID)
	return nil
}

func (s *LeaderboardService) invalidate(ctx context.Context, quizID uuid.UUID) {
	key := config.CacheKey.LeaderboardKey(quizID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Leaderboard cache invalidation failed")
	}
}
