package model

import (
	"errors"
	"testing"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestValidateMultipleChoice(t *testing.T) {
	d := QuestionDraft{
		Type:          strPtr("multiple-choice"),
		Question:      strPtr("Q"),
		Options:       []string{"A", "B"},
		CorrectAnswer: intPtr(1),
	}
	if errs := d.Validate(); len(errs) != 0 {
		t.Fatalf("valid draft reported errors: %v", errs)
	}

	insufficient := QuestionDraft{
		Type:          strPtr("multiple-choice"),
		Question:      strPtr("Q"),
		Options:       []string{"A"},
		CorrectAnswer: intPtr(0),
	}
	if errs := insufficient.Validate(); len(errs) == 0 {
		t.Fatal("single-option draft passed validation")
	}

	outOfRange := QuestionDraft{
		Type:          strPtr("multiple-choice"),
		Question:      strPtr("Q"),
		Options:       []string{"A", "B"},
		CorrectAnswer: intPtr(5),
	}
	if errs := outOfRange.Validate(); len(errs) == 0 {
		t.Fatal("out-of-range correct_answer passed validation")
	}

	blankOption := QuestionDraft{
		Type:          strPtr("multiple-choice"),
		Question:      strPtr("Q"),
		Options:       []string{"A", "   "},
		CorrectAnswer: intPtr(0),
	}
	if errs := blankOption.Validate(); len(errs) == 0 {
		t.Fatal("whitespace-only option passed validation")
	}
}

func TestValidateTrueFalse(t *testing.T) {
	valid := QuestionDraft{
		Type:          strPtr("true-false"),
		Question:      strPtr("Q"),
		CorrectAnswer: intPtr(1),
	}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Fatalf("valid true-false reported errors: %v", errs)
	}

	outOfRange := QuestionDraft{
		Type:          strPtr("true-false"),
		Question:      strPtr("Q"),
		CorrectAnswer: intPtr(2),
	}
	if errs := outOfRange.Validate(); len(errs) == 0 {
		t.Fatal("correct_answer=2 passed true-false validation")
	}
}

func TestValidateFillInTheBlankStripsIrrelevantFields(t *testing.T) {
	d := QuestionDraft{
		Type:          strPtr("fill-in-the-blank"),
		Question:      strPtr("Q"),
		BlankAnswer:   strPtr("x"),
		Options:       []string{"A", "B"},
		CorrectAnswer: intPtr(0),
	}

	// Irrelevant fields are discarded, never reported as errors.
	if errs := d.Validate(); len(errs) != 0 {
		t.Fatalf("draft with extraneous fields reported errors: %v", errs)
	}

	q := d.Normalize()
	if q.Options != nil {
		t.Errorf("options survived normalization: %v", q.Options)
	}
	if q.CorrectAnswer != nil {
		t.Errorf("correct_answer survived normalization: %v", *q.CorrectAnswer)
	}
	if q.BlankAnswer == nil || *q.BlankAnswer != "x" {
		t.Error("blank_answer lost during normalization")
	}

	missing := QuestionDraft{Type: strPtr("fill-in-the-blank"), Question: strPtr("Q")}
	if errs := missing.Validate(); len(errs) == 0 {
		t.Fatal("missing blank_answer passed validation")
	}
}

func TestValidateTypeShortCircuits(t *testing.T) {
	missing := QuestionDraft{Question: strPtr("Q"), Options: []string{"A"}}
	if errs := missing.Validate(); len(errs) != 1 {
		t.Fatalf("missing type: got %d errors, want exactly 1", len(errs))
	}

	unknown := QuestionDraft{Type: strPtr("essay"), Question: strPtr("Q")}
	if errs := unknown.Validate(); len(errs) != 1 {
		t.Fatalf("unknown type: got %d errors, want exactly 1", len(errs))
	}
}

func TestValidateRequiresQuestionText(t *testing.T) {
	d := QuestionDraft{
		Type:          strPtr("true-false"),
		Question:      strPtr("   "),
		CorrectAnswer: intPtr(0),
	}
	if errs := d.Validate(); len(errs) == 0 {
		t.Fatal("whitespace-only question text passed validation")
	}
}

func TestNormalizeTrueFalseDropsOptions(t *testing.T) {
	d := QuestionDraft{
		Type:          strPtr("true-false"),
		Question:      strPtr("Q"),
		Options:       []string{"yes", "no"},
		CorrectAnswer: intPtr(0),
	}
	q := d.Normalize()
	if q.Options != nil {
		t.Errorf("options survived true-false normalization: %v", q.Options)
	}
	if q.CorrectAnswer == nil || *q.CorrectAnswer != 0 {
		t.Error("correct_answer lost during normalization")
	}
}

func TestParseImportFile(t *testing.T) {
	drafts, err := ParseImportFile([]byte(`[{"type":"true-false","question":"Q","correct_answer":1}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 1 || drafts[0].Type == nil || *drafts[0].Type != "true-false" {
		t.Fatalf("parsed drafts = %+v", drafts)
	}

	if _, err := ParseImportFile([]byte(`not json`)); !errors.Is(err, ErrImportNotJSON) {
		t.Errorf("non-JSON input: err = %v, want ErrImportNotJSON", err)
	}
	if _, err := ParseImportFile([]byte(`{"type":"true-false"}`)); !errors.Is(err, ErrImportNotArray) {
		t.Errorf("non-array input: err = %v, want ErrImportNotArray", err)
	}
}

func TestScorePercentage(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{3, 4, 75.00},
		{0, 0, 0.00},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 5, 100.00},
		{0, 7, 0.00},
	}
	for _, c := range cases {
		if got := ScorePercentage(c.correct, c.total); got != c.want {
			t.Errorf("ScorePercentage(%d, %d) = %v, want %v", c.correct, c.total, got, c.want)
		}
	}
}
