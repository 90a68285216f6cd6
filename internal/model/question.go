package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType discriminates the three question variants. Exactly one set of
// answer fields is populated per type: Options+CorrectAnswer for
// multiple-choice, CorrectAnswer (0/1) for true-false, BlankAnswer for
// fill-in-the-blank.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeTrueFalse      QuestionType = "true-false"
	QuestionTypeFillInTheBlank QuestionType = "fill-in-the-blank"
)

// True/false answer values. 1 means true.
const (
	AnswerFalse = 0
	AnswerTrue  = 1
)

// AnswerExpired is the sentinel recorded when the per-question timer runs out
// before any answer is submitted. It grades incorrect for every question type.
const AnswerExpired = -1

// Question represents a single quiz question.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	QuizID        uuid.UUID    `json:"quiz_id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer *int         `json:"correct_answer,omitempty"`
	BlankAnswer   *string      `json:"blank_answer,omitempty"`
	Position      int          `json:"position"`
	CreatedAt     time.Time    `json:"created_at"`
}

// QuestionForPlayer is a question with the answer fields removed, safe to
// send to a player before or during an attempt.
type QuestionForPlayer struct {
	ID       uuid.UUID    `json:"id"`
	Type     QuestionType `json:"type"`
	Text     string       `json:"question"`
	Options  []string     `json:"options,omitempty"`
	Position int          `json:"position"`
}

// ForPlayer strips the answer fields from a question.
func (q *Question) ForPlayer() QuestionForPlayer {
	return QuestionForPlayer{
		ID:       q.ID,
		Type:     q.Type,
		Text:     q.Text,
		Options:  q.Options,
		Position: q.Position,
	}
}

// AddQuestionRequest is the payload for adding a question to a quiz.
// Semantic rules (option counts, answer ranges) are enforced by
// QuestionDraft.Validate, shared with the import path.
type AddQuestionRequest struct {
	Type          string   `json:"type" binding:"required"`
	Question      string   `json:"question" binding:"required,max=2000"`
	Options       []string `json:"options" binding:"omitempty,max=26,dive,max=500"`
	CorrectAnswer *int     `json:"correct_answer" binding:"omitempty"`
	BlankAnswer   *string  `json:"blank_answer" binding:"omitempty"`
	Position      int      `json:"position" binding:"min=0"`
}

// Draft converts an authoring request into an import draft so both paths
// share one validator.
func (r *AddQuestionRequest) Draft() QuestionDraft {
	return QuestionDraft{
		Type:          &r.Type,
		Question:      &r.Question,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		BlankAnswer:   r.BlankAnswer,
	}
}
