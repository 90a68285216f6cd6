package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AttemptAnswer is one recorded answer within a completed attempt.
// SelectedAnswer holds the option index (or 0/1 for true-false); it is
// AnswerExpired (-1) when the question timed out. Fill-in-the-blank
// submissions carry the text in TextAnswer.
type AttemptAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedAnswer int       `json:"selected_answer"`
	TextAnswer     string    `json:"text_answer,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
}

// Attempt records one completed play-through of a quiz. Immutable once
// created; each question contributes exactly one answer.
type Attempt struct {
	ID             uuid.UUID       `json:"id"`
	QuizID         uuid.UUID       `json:"quiz_id"`
	UserID         uuid.UUID       `json:"user_id"`
	UserName       string          `json:"user_name"`
	UserPhotoURL   string          `json:"user_photo_url,omitempty"`
	Answers        []AttemptAnswer `json:"answers"`
	CorrectAnswers int             `json:"correct_answers"`
	TotalQuestions int             `json:"total_questions"`
	Percentage     float64         `json:"percentage"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// ScorePercentage computes the attempt score rounded to two decimal places.
// Returns 0.00 when total is zero.
func ScorePercentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
