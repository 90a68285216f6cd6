package play

import (
	"testing"
	"time"

	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// newTestEngine builds an engine with fast timers and a channel sink.
func newTestEngine(questions []model.Question, settings model.QuizSettings) (*Engine, chan Event) {
	events := make(chan Event, 128)
	e := NewEngine(questions, settings, func(ev Event) { events <- ev })
	e.revealDelay = 5 * time.Millisecond
	e.tickInterval = time.Millisecond
	return e, events
}

func waitEvent(t *testing.T, events chan Event, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func fourQuestions() []model.Question {
	return []model.Question{
		mcQuestion(0, "a", "b"),
		mcQuestion(1, "a", "b"),
		{Type: model.QuestionTypeTrueFalse, Text: "tf", CorrectAnswer: intPtr(1)},
		{Type: model.QuestionTypeFillInTheBlank, Text: "blank", BlankAnswer: strPtr("go")},
	}
}

func TestEndModeAdvancesWithoutReveal(t *testing.T) {
	e, events := newTestEngine(fourQuestions(), model.QuizSettings{
		ShowAnswersAfter: model.ShowAnswersAtEnd,
	})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	first := waitEvent(t, events, EventQuestion)
	if first.Index != 0 || first.Total != 4 {
		t.Fatalf("first question event = index %d total %d", first.Index, first.Total)
	}
	if first.Question.Options == nil || first.Question.Options[0] != "a" {
		t.Fatal("question payload missing options")
	}

	// 3 correct, 1 wrong: the percentage must land on exactly 75.00.
	submissions := []Submission{{Selected: 0}, {Selected: 1}, {Selected: 1}, {Text: "wrong"}}
	for i, sub := range submissions {
		if err := e.Submit(sub); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	// End mode never reveals per-question correctness on the way through.
	var done Event
	deadline := time.After(2 * time.Second)
	for done.Type != EventCompleted {
		select {
		case ev := <-events:
			if ev.Type == EventReveal {
				t.Fatal("end mode emitted a reveal event")
			}
			done = ev
		case <-deadline:
			t.Fatal("timed out waiting for completion")
		}
	}

	s := done.Summary
	if s.CorrectAnswers != 3 || s.TotalQuestions != 4 {
		t.Fatalf("summary = %d/%d, want 3/4", s.CorrectAnswers, s.TotalQuestions)
	}
	if s.Percentage != 75.00 {
		t.Fatalf("percentage = %v, want 75.00", s.Percentage)
	}
	if len(s.Answers) != 4 {
		t.Fatalf("recorded %d answers, want 4", len(s.Answers))
	}
}

func TestImmediatelyModeRevealsThenAutoAdvances(t *testing.T) {
	e, events := newTestEngine(fourQuestions()[:2], model.QuizSettings{
		ShowAnswersAfter: model.ShowAnswersImmediately,
	})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, EventQuestion)

	if err := e.Submit(Submission{Selected: 0}); err != nil {
		t.Fatal(err)
	}
	reveal := waitEvent(t, events, EventReveal)
	if !reveal.Correct {
		t.Fatal("correct submission revealed as incorrect")
	}
	if reveal.CorrectAnswer == nil || *reveal.CorrectAnswer != 0 {
		t.Fatal("reveal did not disclose the correct answer")
	}

	// A second submission during the reveal window must be rejected.
	if err := e.Submit(Submission{Selected: 1}); err != ErrNotAnswering {
		t.Fatalf("submit during reveal: err = %v, want ErrNotAnswering", err)
	}

	// The next question arrives without any explicit advance.
	next := waitEvent(t, events, EventQuestion)
	if next.Index != 1 {
		t.Fatalf("auto-advanced to index %d, want 1", next.Index)
	}

	if err := e.Submit(Submission{Selected: 1}); err != nil {
		t.Fatal(err)
	}
	done := waitEvent(t, events, EventCompleted)
	if done.Summary.CorrectAnswers != 2 {
		t.Fatalf("correct = %d, want 2", done.Summary.CorrectAnswers)
	}
}

func TestUntilCorrectRecordsOnlyTheCorrectSubmission(t *testing.T) {
	e, events := newTestEngine(fourQuestions()[:1], model.QuizSettings{
		ShowAnswersAfter: model.ShowAnswersUntilCorrect,
		// A time limit must be ignored in study mode.
		TimeLimitPerQuestion: 1,
	})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, EventQuestion)

	// Advancing before anything was answered is a guarded no-op.
	e.Advance()

	for i := 0; i < 3; i++ {
		if err := e.Submit(Submission{Selected: 1}); err != nil {
			t.Fatalf("wrong submit %d: %v", i, err)
		}
		reveal := waitEvent(t, events, EventReveal)
		if reveal.Correct || !reveal.Retry {
			t.Fatalf("wrong submission reveal = %+v", reveal)
		}
		// Still answering: advancing now must not skip the question.
		e.Advance()
	}

	if err := e.Submit(Submission{Selected: 0}); err != nil {
		t.Fatal(err)
	}
	reveal := waitEvent(t, events, EventReveal)
	if !reveal.Correct {
		t.Fatal("correct submission revealed as incorrect")
	}

	// Completion requires the explicit advance.
	select {
	case ev := <-events:
		t.Fatalf("unexpected %s event before advance", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}

	e.Advance()
	done := waitEvent(t, events, EventCompleted)
	s := done.Summary
	if len(s.Answers) != 1 {
		t.Fatalf("recorded %d answers, want exactly 1", len(s.Answers))
	}
	if !s.Answers[0].IsCorrect || s.Answers[0].SelectedAnswer != 0 {
		t.Fatalf("recorded answer = %+v, want the correct submission", s.Answers[0])
	}
	if s.Percentage != 100.00 {
		t.Fatalf("percentage = %v, want 100.00", s.Percentage)
	}

	// A duplicate advance after completion must not do anything.
	e.Advance()
}

func TestTimerExpiryRecordsSentinelAndAdvances(t *testing.T) {
	e, events := newTestEngine(fourQuestions()[:2], model.QuizSettings{
		ShowAnswersAfter:     model.ShowAnswersAtEnd,
		TimeLimitPerQuestion: 3,
	})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	q := waitEvent(t, events, EventQuestion)
	if q.TimeLimit != 3 {
		t.Fatalf("time_limit = %d, want 3", q.TimeLimit)
	}

	// Let the first question expire, then answer the second.
	tick := waitEvent(t, events, EventTick)
	if tick.Remaining <= 0 {
		t.Fatalf("tick remaining = %d", tick.Remaining)
	}
	next := waitEvent(t, events, EventQuestion)
	if next.Index != 1 {
		t.Fatalf("expired question advanced to index %d, want 1", next.Index)
	}

	if err := e.Submit(Submission{Selected: 1}); err != nil {
		t.Fatal(err)
	}
	done := waitEvent(t, events, EventCompleted)
	s := done.Summary

	if len(s.Answers) != 2 {
		t.Fatalf("recorded %d answers, want 2", len(s.Answers))
	}
	expired := s.Answers[0]
	if expired.SelectedAnswer != model.AnswerExpired || expired.IsCorrect {
		t.Fatalf("expired answer = %+v, want selected=-1 incorrect", expired)
	}
	if s.CorrectAnswers != 1 {
		t.Fatalf("correct = %d, want 1", s.CorrectAnswers)
	}
}

func TestUntilCorrectModeIsNeverTimed(t *testing.T) {
	settings := model.QuizSettings{
		ShowAnswersAfter:     model.ShowAnswersUntilCorrect,
		TimeLimitPerQuestion: 1,
	}
	if settings.Timed() {
		t.Fatal("untilCorrect mode reported as timed")
	}

	e, events := newTestEngine(fourQuestions()[:1], settings)
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, EventQuestion)

	select {
	case ev := <-events:
		t.Fatalf("unexpected %s event in untimed mode", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStopSuppressesPendingTimers(t *testing.T) {
	e, events := newTestEngine(fourQuestions()[:1], model.QuizSettings{
		ShowAnswersAfter:     model.ShowAnswersAtEnd,
		TimeLimitPerQuestion: 2,
	})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, EventQuestion)
	e.Stop()

	// The countdown must die silently: no expiry record, no completion.
	select {
	case ev := <-events:
		t.Fatalf("event %s emitted after Stop", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}
	if e.Completed() {
		t.Fatal("stopped attempt reported completed")
	}

	if err := e.Submit(Submission{Selected: 0}); err != ErrNotAnswering {
		t.Fatalf("submit after stop: err = %v, want ErrNotAnswering", err)
	}
}

func TestZeroQuestionsCompletesWithZeroScore(t *testing.T) {
	e, events := newTestEngine(nil, model.QuizSettings{ShowAnswersAfter: model.ShowAnswersAtEnd})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	done := waitEvent(t, events, EventCompleted)
	if done.Summary.Percentage != 0.00 || done.Summary.TotalQuestions != 0 {
		t.Fatalf("summary = %+v, want 0.00 of 0", done.Summary)
	}
}

func TestStartTwiceFails(t *testing.T) {
	e, _ := newTestEngine(fourQuestions()[:1], model.QuizSettings{ShowAnswersAfter: model.ShowAnswersAtEnd})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != ErrAlreadyStarted {
		t.Fatalf("second start: err = %v, want ErrAlreadyStarted", err)
	}
}
