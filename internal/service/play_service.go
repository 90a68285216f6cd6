package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/play"
	"github.com/quizdeck/quizdeck-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Play errors.
var (
	ErrAttemptExists  = errors.New("quiz already completed and does not allow repeat attempts")
	ErrAttemptNotSave = errors.New("attempt could not be saved")
)

// sessionEventBuffer bounds the per-session event channel. Sized for the
// worst case of one tick per second on a long question plus reveal traffic.
const sessionEventBuffer = 256

// PlaySession is one live play-through: an engine plus the event channel the
// transport drains. One session per WebSocket connection.
type PlaySession struct {
	ID     uuid.UUID
	QuizID uuid.UUID
	UserID uuid.UUID
	Engine *play.Engine
	Events chan play.Event

	userName     string
	userPhotoURL string

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as active for idle pruning.
func (s *PlaySession) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *PlaySession) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// PlayService owns the registry of in-flight play sessions. Sessions live in
// process memory; completed attempts are the only persisted record.
type PlayService struct {
	quizService  *QuizService
	questionRepo *repository.QuestionRepository
	attemptRepo  *repository.AttemptRepository
	userRepo     *repository.UserRepository
	rdb          *redis.Client
	cfg          *config.Config
	log          zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*PlaySession
}

// NewPlayService creates a new PlayService and starts its idle-session
// janitor. Cancel ctx to stop the janitor.
func NewPlayService(
	ctx context.Context,
	quizService *QuizService,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *PlayService {
	s := &PlayService{
		quizService:  quizService,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		rdb:          rdb,
		cfg:          cfg,
		log:          log.With().Str("component", "play_service").Logger(),
		sessions:     make(map[uuid.UUID]*PlaySession),
	}
	go s.janitor(ctx)
	return s
}

// Start creates and registers a session for one play-through. The engine is
// not started yet; the transport calls session.Engine.Start once it is ready
// to receive events.
func (s *PlayService) Start(ctx context.Context, quizID, userID uuid.UUID) (*PlaySession, error) {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if !quiz.Settings.AllowMultipleAttempts {
		done, err := s.attemptRepo.HasCompleted(ctx, quizID, userID)
		if err != nil {
			return nil, fmt.Errorf("check attempts: %w", err)
		}
		if done {
			return nil, ErrAttemptExists
		}
	}

	questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	// Snapshot the player's identity now; later profile edits must not
	// rewrite this attempt.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	session := &PlaySession{
		ID:           uuid.New(),
		QuizID:       quizID,
		UserID:       userID,
		Events:       make(chan play.Event, sessionEventBuffer),
		userName:     user.DisplayName,
		userPhotoURL: user.PhotoURL,
		lastSeen:     time.Now(),
	}
	session.Engine = play.NewEngine(questions, quiz.Settings, func(e play.Event) {
		select {
		case session.Events <- e:
		default:
			s.log.Warn().
				Str("session_id", session.ID.String()).
				Str("event", string(e.Type)).
				Msg("Session event buffer full, dropping event")
		}
	})

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.Debug().
		Str("session_id", session.ID.String()).
		Str("quiz_id", quizID.String()).
		Str("user_id", userID.String()).
		Msg("Play session started")
	return session, nil
}

// Complete persists the finished attempt and queues a leaderboard refresh.
// A failed insert is returned to the caller; the attempt is not retried.
func (s *PlayService) Complete(ctx context.Context, session *PlaySession, summary *play.Summary) (*model.Attempt, error) {
	attempt := &model.Attempt{
		QuizID:         session.QuizID,
		UserID:         session.UserID,
		UserName:       session.userName,
		UserPhotoURL:   session.userPhotoURL,
		Answers:        summary.Answers,
		CorrectAnswers: summary.CorrectAnswers,
		TotalQuestions: summary.TotalQuestions,
		Percentage:     summary.Percentage,
		CompletedAt:    time.Now(),
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		s.log.Error().
			Err(err).
			Str("session_id", session.ID.String()).
			Str("quiz_id", session.QuizID.String()).
			Msg("Attempt insert failed")
		return nil, ErrAttemptNotSave
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.LeaderboardRefreshQueue, session.QuizID.String()).Err(); err != nil {
		// The cache TTL still forces a recompute; log and move on.
		s.log.Warn().Err(err).Str("quiz_id", session.QuizID.String()).Msg("Leaderboard refresh enqueue failed")
	}

	return attempt, nil
}

// Finish stops a session's engine and removes it from the registry. Safe to
// call for sessions already pruned.
func (s *PlayService) Finish(session *PlaySession) {
	session.Engine.Stop()

	s.mu.Lock()
	delete(s.sessions, session.ID)
	s.mu.Unlock()
}

// ActiveSessions returns the number of registered sessions.
func (s *PlayService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// janitor prunes sessions that stopped receiving input, covering transports
// that died without calling Finish.
func (s *PlayService) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.cfg.SessionIdleTimeout)

			s.mu.Lock()
			var stale []*PlaySession
			for id, session := range s.sessions {
				if session.idleSince(cutoff) {
					stale = append(stale, session)
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()

			for _, session := range stale {
				session.Engine.Stop()
				s.log.Info().
					Str("session_id", session.ID.String()).
					Str("quiz_id", session.QuizID.String()).
					Msg("Idle play session pruned")
			}
		}
	}
}
