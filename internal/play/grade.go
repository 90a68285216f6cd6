// Package play implements quiz-attempt mechanics: answer grading and the
// state machine that drives a single play-through from the first question to
// the completed summary. It is transport-agnostic; the WebSocket layer only
// feeds it inputs and renders its events.
package play

import (
	"strings"

	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// Submission is a player's answer to one question. Selected carries the
// option index (0/1 for true-false); Text carries a fill-in-the-blank answer.
// Selected == model.AnswerExpired marks a timed-out question.
type Submission struct {
	Selected int    `json:"selected"`
	Text     string `json:"text,omitempty"`
}

// Grade reports whether a submission answers the question correctly.
// Pure and deterministic: numeric equality for multiple-choice/true-false,
// trimmed case-insensitive equality for fill-in-the-blank. The expired
// sentinel is incorrect for every question type.
func Grade(q model.Question, sub Submission) bool {
	if sub.Selected == model.AnswerExpired {
		return false
	}

	switch q.Type {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		return q.CorrectAnswer != nil && sub.Selected == *q.CorrectAnswer
	case model.QuestionTypeFillInTheBlank:
		if q.BlankAnswer == nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(sub.Text), strings.TrimSpace(*q.BlankAnswer))
	}
	return false
}
