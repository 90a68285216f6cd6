package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrQuestionNotFound indicates the question does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// InvalidQuestionError reports why a submitted question failed semantic
// validation.
type InvalidQuestionError struct {
	Reasons []string
}

func (e *InvalidQuestionError) Error() string {
	return "invalid question: " + strings.Join(e.Reasons, "; ")
}

// QuestionService handles question authoring and JSON imports. All mutations
// are owner-only and invalidate the quiz's cached play payload.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	quizService  *QuizService
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, quizService *QuizService, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		quizService:  quizService,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// ListByQuiz retrieves a quiz's questions in play order, answers included.
// Owner-only; players read the answer-free payload instead.
func (s *QuestionService) ListByQuiz(ctx context.Context, quizID, userID uuid.UUID) ([]model.Question, error) {
	if _, err := s.requireOwner(ctx, quizID, userID); err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// Add validates and appends a question to a quiz.
func (s *QuestionService) Add(ctx context.Context, quizID, userID uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	if _, err := s.requireOwner(ctx, quizID, userID); err != nil {
		return nil, err
	}

	draft := req.Draft()
	if errs := draft.Validate(); len(errs) > 0 {
		return nil, &InvalidQuestionError{Reasons: errs}
	}

	question := draft.Normalize()
	question.QuizID = quizID
	question.Text = strings.TrimSpace(question.Text)

	if req.Position > 0 {
		question.Position = req.Position
	} else {
		max, err := s.questionRepo.MaxPosition(ctx, quizID)
		if err != nil {
			return nil, fmt.Errorf("next position: %w", err)
		}
		question.Position = max + 1
	}

	if err := s.questionRepo.Create(ctx, &question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.quizService.InvalidatePayload(ctx, quizID)
	return &question, nil
}

// Update replaces a question's content.
func (s *QuestionService) Update(ctx context.Context, quizID, questionID, userID uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	if _, err := s.requireOwner(ctx, quizID, userID); err != nil {
		return nil, err
	}

	existing, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	if existing.QuizID != quizID {
		return nil, ErrQuestionNotFound
	}

	draft := req.Draft()
	if errs := draft.Validate(); len(errs) > 0 {
		return nil, &InvalidQuestionError{Reasons: errs}
	}

	question := draft.Normalize()
	question.ID = questionID
	question.QuizID = quizID
	question.Text = strings.TrimSpace(question.Text)
	question.Position = existing.Position
	if req.Position > 0 {
		question.Position = req.Position
	}

	if err := s.questionRepo.Update(ctx, &question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}

	s.quizService.InvalidatePayload(ctx, quizID)
	return &question, nil
}

// Delete removes a question from a quiz.
func (s *QuestionService) Delete(ctx context.Context, quizID, questionID, userID uuid.UUID) error {
	if _, err := s.requireOwner(ctx, quizID, userID); err != nil {
		return err
	}

	existing, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	if existing.QuizID != quizID {
		return ErrQuestionNotFound
	}

	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	s.quizService.InvalidatePayload(ctx, quizID)
	return nil
}

// Import validates a JSON import file and inserts the valid questions,
// appended after the quiz's existing ones. Invalid items are skipped and
// reported per index; valid items in the same file still import.
func (s *QuestionService) Import(ctx context.Context, quizID, userID uuid.UUID, data []byte) (int, []model.ImportReport, error) {
	if _, err := s.requireOwner(ctx, quizID, userID); err != nil {
		return 0, nil, err
	}

	drafts, err := model.ParseImportFile(data)
	if err != nil {
		return 0, nil, err
	}

	max, err := s.questionRepo.MaxPosition(ctx, quizID)
	if err != nil {
		return 0, nil, fmt.Errorf("next position: %w", err)
	}

	var (
		valid   []model.Question
		reports []model.ImportReport
	)
	for i, draft := range drafts {
		if errs := draft.Validate(); len(errs) > 0 {
			reports = append(reports, model.ImportReport{Index: i, Errors: errs})
			continue
		}
		q := draft.Normalize()
		q.QuizID = quizID
		q.Text = strings.TrimSpace(q.Text)
		max++
		q.Position = max
		valid = append(valid, q)
	}

	if len(valid) > 0 {
		if err := s.questionRepo.CreateBatch(ctx, valid); err != nil {
			return 0, nil, fmt.Errorf("insert questions: %w", err)
		}
		s.quizService.InvalidatePayload(ctx, quizID)
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Int("imported", len(valid)).
		Int("rejected", len(reports)).
		Msg("Question import processed")
	return len(valid), reports, nil
}

func (s *QuestionService) requireOwner(ctx context.Context, quizID, userID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizService.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != userID {
		return nil, ErrNotQuizOwner
	}
	return quiz, nil
}
