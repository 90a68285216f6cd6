package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// QuestionDraft is a candidate question from a JSON import file. All fields
// are optional at this stage; Validate reports what is wrong and Normalize
// produces a Question carrying only the fields relevant to the declared type.
type QuestionDraft struct {
	Type          *string  `json:"type"`
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer"`
	BlankAnswer   *string  `json:"blank_answer"`
}

// ImportReport carries the validation outcome for one item in a batch.
type ImportReport struct {
	Index  int      `json:"index"`
	Errors []string `json:"errors,omitempty"`
}

// File-level import errors.
var (
	ErrImportNotJSON  = errors.New("import file is not valid JSON")
	ErrImportNotArray = errors.New("import file must contain a JSON array of questions")
)

// ParseImportFile decodes a question import file. A file that is not JSON or
// not a top-level array fails as a whole; no items are processed.
func ParseImportFile(data []byte) ([]QuestionDraft, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, ErrImportNotJSON
	}
	if _, ok := probe.([]interface{}); !ok {
		return nil, ErrImportNotArray
	}

	var drafts []QuestionDraft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, ErrImportNotJSON
	}
	return drafts, nil
}

// Validate checks a draft against the rules of its declared type and returns
// a list of error strings; an empty list means the draft is valid. A missing
// or unrecognized type short-circuits with a single error. Fields irrelevant
// to the declared type are not errors; Normalize discards them.
func (d QuestionDraft) Validate() []string {
	var errs []string

	if d.Type == nil {
		return []string{"question type is required"}
	}
	qt := QuestionType(*d.Type)
	switch qt {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeFillInTheBlank:
	default:
		return []string{fmt.Sprintf("unrecognized question type %q", *d.Type)}
	}

	if d.Question == nil || strings.TrimSpace(*d.Question) == "" {
		errs = append(errs, "question text is required")
	}

	switch qt {
	case QuestionTypeMultipleChoice:
		if len(d.Options) < 2 {
			errs = append(errs, "multiple-choice questions need at least 2 options")
		} else {
			for i, opt := range d.Options {
				if strings.TrimSpace(opt) == "" {
					errs = append(errs, fmt.Sprintf("option %d is empty", i+1))
				}
			}
		}
		if d.CorrectAnswer == nil || *d.CorrectAnswer < 0 || *d.CorrectAnswer >= len(d.Options) {
			errs = append(errs, "correct_answer must be a valid option index")
		}

	case QuestionTypeTrueFalse:
		if d.CorrectAnswer == nil || (*d.CorrectAnswer != AnswerFalse && *d.CorrectAnswer != AnswerTrue) {
			errs = append(errs, "correct_answer must be 0 (false) or 1 (true)")
		}

	case QuestionTypeFillInTheBlank:
		if d.BlankAnswer == nil || strings.TrimSpace(*d.BlankAnswer) == "" {
			errs = append(errs, "blank_answer is required")
		}
	}

	return errs
}

// Normalize converts a valid draft into a Question, keeping only the fields
// that belong to the declared type. Call Validate first.
func (d QuestionDraft) Normalize() Question {
	q := Question{
		Type: QuestionType(*d.Type),
		Text: *d.Question,
	}

	switch q.Type {
	case QuestionTypeMultipleChoice:
		q.Options = d.Options
		q.CorrectAnswer = d.CorrectAnswer
	case QuestionTypeTrueFalse:
		q.CorrectAnswer = d.CorrectAnswer
	case QuestionTypeFillInTheBlank:
		q.BlankAnswer = d.BlankAnswer
	}

	return q
}
