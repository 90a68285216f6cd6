package play

import (
	"testing"

	"github.com/quizdeck/quizdeck-backend/internal/model"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func mcQuestion(correct int, options ...string) model.Question {
	return model.Question{
		Type:          model.QuestionTypeMultipleChoice,
		Text:          "pick one",
		Options:       options,
		CorrectAnswer: intPtr(correct),
	}
}

func TestGradeMultipleChoice(t *testing.T) {
	q := mcQuestion(2, "a", "b", "c", "d")

	if !Grade(q, Submission{Selected: 2}) {
		t.Error("correct index graded incorrect")
	}
	for _, i := range []int{0, 1, 3, 99} {
		if Grade(q, Submission{Selected: i}) {
			t.Errorf("index %d graded correct, want incorrect", i)
		}
	}
}

func TestGradeTrueFalse(t *testing.T) {
	q := model.Question{
		Type:          model.QuestionTypeTrueFalse,
		Text:          "the sky is blue",
		CorrectAnswer: intPtr(model.AnswerTrue),
	}

	if !Grade(q, Submission{Selected: 1}) {
		t.Error("true graded incorrect")
	}
	if Grade(q, Submission{Selected: 0}) {
		t.Error("false graded correct")
	}
}

func TestGradeFillInTheBlankIgnoresCaseAndWhitespace(t *testing.T) {
	q := model.Question{
		Type:        model.QuestionTypeFillInTheBlank,
		Text:        "capital of France",
		BlankAnswer: strPtr("Paris"),
	}

	for _, text := range []string{"Paris", "paris", "  Paris ", "PARIS", "\tparis\n"} {
		if !Grade(q, Submission{Text: text}) {
			t.Errorf("submission %q graded incorrect", text)
		}
	}
	for _, text := range []string{"", "London", "Par is"} {
		if Grade(q, Submission{Text: text}) {
			t.Errorf("submission %q graded correct", text)
		}
	}
}

func TestGradeExpiredSentinelAlwaysIncorrect(t *testing.T) {
	questions := []model.Question{
		mcQuestion(0, "a", "b"),
		{Type: model.QuestionTypeTrueFalse, CorrectAnswer: intPtr(0)},
		{Type: model.QuestionTypeFillInTheBlank, BlankAnswer: strPtr("x")},
	}

	for _, q := range questions {
		if Grade(q, Submission{Selected: model.AnswerExpired, Text: "x"}) {
			t.Errorf("expired sentinel graded correct for type %s", q.Type)
		}
	}
}

func TestGradeIsPure(t *testing.T) {
	q := mcQuestion(1, "a", "b")
	sub := Submission{Selected: 1}

	for i := 0; i < 10; i++ {
		if !Grade(q, sub) {
			t.Fatal("grading is not deterministic")
		}
	}
	if q.Options[0] != "a" || *q.CorrectAnswer != 1 {
		t.Error("Grade mutated its question")
	}
}
