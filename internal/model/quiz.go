package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ShowAnswersMode controls when correctness feedback is shown to a player.
type ShowAnswersMode string

const (
	// ShowAnswersImmediately reveals correctness right after each submission,
	// then auto-advances after a short delay.
	ShowAnswersImmediately ShowAnswersMode = "immediately"
	// ShowAnswersAtEnd advances silently; results are visible only on the
	// final summary.
	ShowAnswersAtEnd ShowAnswersMode = "end"
	// ShowAnswersUntilCorrect lets the player retry each question until they
	// get it right. Untimed study mode.
	ShowAnswersUntilCorrect ShowAnswersMode = "untilCorrect"
)

// QuizSettings configures how a quiz is played.
type QuizSettings struct {
	ShowAnswersAfter      ShowAnswersMode `json:"show_answers_after" binding:"required,oneof=immediately end untilCorrect"`
	TimeLimitPerQuestion  int             `json:"time_limit_per_question,omitempty" binding:"omitempty,min=1,max=3600"`
	AllowMultipleAttempts bool            `json:"allow_multiple_attempts,omitempty"`
}

// Timed reports whether a per-question countdown applies. The untilCorrect
// mode never runs a timer.
func (s QuizSettings) Timed() bool {
	return s.TimeLimitPerQuestion > 0 && s.ShowAnswersAfter != ShowAnswersUntilCorrect
}

// Validate enforces settings rules not expressible as binding tags.
func (s QuizSettings) Validate() error {
	switch s.ShowAnswersAfter {
	case ShowAnswersImmediately, ShowAnswersAtEnd, ShowAnswersUntilCorrect:
	default:
		return errors.New("show_answers_after must be immediately, end, or untilCorrect")
	}
	if s.TimeLimitPerQuestion < 0 {
		return errors.New("time_limit_per_question must be at least 1 second")
	}
	return nil
}

// Quiz represents a quiz entity. Questions are children, created and edited
// only by the quiz owner.
type Quiz struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Settings    QuizSettings `json:"settings"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateQuizRequest is the payload for creating a new quiz.
type CreateQuizRequest struct {
	Name        string       `json:"name" binding:"required,min=1,max=255"`
	Description string       `json:"description" binding:"omitempty,max=2000"`
	Settings    QuizSettings `json:"settings" binding:"required"`
}

// UpdateQuizRequest is the payload for updating an existing quiz.
type UpdateQuizRequest struct {
	Name        string        `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string       `json:"description" binding:"omitempty,max=2000"`
	Settings    *QuizSettings `json:"settings" binding:"omitempty"`
}

// PlayPayload is the redis-cached quiz view sent to players: settings plus
// questions without their answers.
type PlayPayload struct {
	QuizID        uuid.UUID           `json:"quiz_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Settings      QuizSettings        `json:"settings"`
	QuestionCount int                 `json:"question_count"`
	Questions     []QuestionForPlayer `json:"questions"`
}
