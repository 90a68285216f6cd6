package model

import "testing"

func TestQuizSettingsTimed(t *testing.T) {
	cases := []struct {
		name     string
		settings QuizSettings
		want     bool
	}{
		{"immediately with limit", QuizSettings{ShowAnswersAfter: ShowAnswersImmediately, TimeLimitPerQuestion: 30}, true},
		{"end with limit", QuizSettings{ShowAnswersAfter: ShowAnswersAtEnd, TimeLimitPerQuestion: 30}, true},
		{"no limit", QuizSettings{ShowAnswersAfter: ShowAnswersAtEnd}, false},
		{"untilCorrect ignores limit", QuizSettings{ShowAnswersAfter: ShowAnswersUntilCorrect, TimeLimitPerQuestion: 30}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.settings.Timed(); got != tc.want {
				t.Fatalf("Timed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestQuizSettingsValidate(t *testing.T) {
	ok := QuizSettings{ShowAnswersAfter: ShowAnswersImmediately, TimeLimitPerQuestion: 10}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	bad := QuizSettings{ShowAnswersAfter: "sometimes"}
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown reveal mode accepted")
	}
}
