package play

import (
	"errors"
	"sync"
	"time"

	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// Phase is the sub-state of the question currently presented.
type Phase string

const (
	// PhaseAnswering accepts submissions for the current question.
	PhaseAnswering Phase = "answering"
	// PhaseRevealed shows correctness feedback: in immediately mode during
	// the auto-advance delay, in untilCorrect mode while waiting for an
	// explicit advance.
	PhaseRevealed Phase = "revealed"
	// PhaseCompleted is terminal; the summary has been emitted.
	PhaseCompleted Phase = "completed"
)

// EventType enumerates engine event kinds.
type EventType string

const (
	EventQuestion  EventType = "question"
	EventTick      EventType = "tick"
	EventReveal    EventType = "reveal"
	EventCompleted EventType = "completed"
)

// Event is a state-change notification pushed to the event sink.
type Event struct {
	Type EventType `json:"type"`

	// question
	Index     int                      `json:"index,omitempty"`
	Total     int                      `json:"total,omitempty"`
	Question  *model.QuestionForPlayer `json:"question,omitempty"`
	TimeLimit int                      `json:"time_limit,omitempty"`

	// tick
	Remaining int `json:"remaining,omitempty"`

	// reveal
	Correct       bool    `json:"correct,omitempty"`
	Retry         bool    `json:"retry,omitempty"`
	CorrectAnswer *int    `json:"correct_answer,omitempty"`
	BlankAnswer   *string `json:"blank_answer,omitempty"`

	// completed
	Summary *Summary `json:"summary,omitempty"`
}

// Summary aggregates the graded answers of a finished attempt.
type Summary struct {
	Answers        []model.AttemptAnswer `json:"answers"`
	CorrectAnswers int                   `json:"correct_answers"`
	TotalQuestions int                   `json:"total_questions"`
	Percentage     float64               `json:"percentage"`
}

// Engine errors.
var (
	ErrAlreadyStarted = errors.New("attempt already started")
	ErrNotAnswering   = errors.New("no question is awaiting an answer")
)

const (
	defaultRevealDelay  = 2 * time.Second
	defaultTickInterval = time.Second
)

// Engine is the attempt state machine for one play-through. States are
// Presenting(i) for each question index plus terminal Completed; inputs are
// Submit, Advance, and the internal countdown expiry. The sink is invoked
// synchronously in event order and must not call back into the engine.
//
// Each play-through owns its engine; nothing is shared across attempts.
// Timer callbacks are guarded by a generation token so a callback that fires
// after its question (or the whole attempt) is gone is a silent no-op.
type Engine struct {
	mu        sync.Mutex
	questions []model.Question
	settings  model.QuizSettings
	sink      func(Event)

	idx     int
	phase   Phase
	answers []model.AttemptAnswer

	started bool
	stopped bool

	// gen invalidates outstanding timer callbacks. It is bumped on every
	// question transition, reveal, and Stop.
	gen       int
	remaining int

	revealDelay  time.Duration
	tickInterval time.Duration
}

// NewEngine builds an engine for the given questions and settings. The sink
// receives every event; pass a function that hands events off quickly.
func NewEngine(questions []model.Question, settings model.QuizSettings, sink func(Event)) *Engine {
	return &Engine{
		questions:    questions,
		settings:     settings,
		sink:         sink,
		phase:        PhaseAnswering,
		revealDelay:  defaultRevealDelay,
		tickInterval: defaultTickInterval,
	}
}

// Start presents the first question and arms its timer. A quiz with zero
// questions completes immediately with a 0.00 summary.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true

	if len(e.questions) == 0 {
		e.completeLocked()
		return nil
	}

	e.emitQuestionLocked()
	e.startTimerLocked()
	return nil
}

// Submit grades an answer for the current question and drives the transition
// dictated by the quiz's reveal mode.
func (e *Engine) Submit(sub Submission) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || e.phase != PhaseAnswering {
		return ErrNotAnswering
	}

	q := e.questions[e.idx]
	correct := Grade(q, sub)

	switch e.settings.ShowAnswersAfter {
	case model.ShowAnswersImmediately:
		e.recordLocked(q, sub, correct)
		e.phase = PhaseRevealed
		e.gen++ // cancel the countdown during the reveal window
		e.sink(Event{
			Type:          EventReveal,
			Correct:       correct,
			CorrectAnswer: q.CorrectAnswer,
			BlankAnswer:   q.BlankAnswer,
		})
		gen := e.gen
		time.AfterFunc(e.revealDelay, func() { e.autoAdvance(gen) })

	case model.ShowAnswersUntilCorrect:
		if !correct {
			// Feedback only. The wrong guess is never appended to the
			// recorded answers; the player stays on the question.
			e.sink(Event{Type: EventReveal, Correct: false, Retry: true})
			return nil
		}
		e.recordLocked(q, sub, true)
		e.phase = PhaseRevealed
		e.sink(Event{
			Type:          EventReveal,
			Correct:       true,
			CorrectAnswer: q.CorrectAnswer,
			BlankAnswer:   q.BlankAnswer,
		})
		// Waits for an explicit Advance.

	default: // ShowAnswersAtEnd
		e.recordLocked(q, sub, correct)
		e.advanceLocked()
	}

	return nil
}

// Advance moves past a question whose correct answer has been revealed in
// untilCorrect mode. In every other situation it is a no-op: it never grades,
// never records, and never skips a question.
func (e *Engine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || e.phase != PhaseRevealed {
		return
	}
	if e.settings.ShowAnswersAfter != model.ShowAnswersUntilCorrect {
		return
	}
	e.advanceLocked()
}

// Stop abandons the attempt: all pending timers become no-ops and no further
// events are emitted. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.gen++
}

// Completed reports whether the attempt reached its terminal state.
func (e *Engine) Completed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseCompleted
}

// Progress returns the current question index and total question count.
func (e *Engine) Progress() (index, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idx, len(e.questions)
}

// ─── Internal transitions (mu held) ─────────────────────────────────

func (e *Engine) recordLocked(q model.Question, sub Submission, correct bool) {
	e.answers = append(e.answers, model.AttemptAnswer{
		QuestionID:     q.ID,
		SelectedAnswer: sub.Selected,
		TextAnswer:     sub.Text,
		IsCorrect:      correct,
	})
}

func (e *Engine) advanceLocked() {
	e.gen++
	e.idx++

	if e.idx >= len(e.questions) {
		e.completeLocked()
		return
	}

	e.phase = PhaseAnswering
	e.emitQuestionLocked()
	e.startTimerLocked()
}

func (e *Engine) completeLocked() {
	e.phase = PhaseCompleted
	e.stopped = true
	e.gen++

	correct := 0
	for _, a := range e.answers {
		if a.IsCorrect {
			correct++
		}
	}
	total := len(e.questions)

	answers := e.answers
	if answers == nil {
		answers = []model.AttemptAnswer{}
	}

	e.sink(Event{
		Type: EventCompleted,
		Summary: &Summary{
			Answers:        answers,
			CorrectAnswers: correct,
			TotalQuestions: total,
			Percentage:     model.ScorePercentage(correct, total),
		},
	})
}

func (e *Engine) emitQuestionLocked() {
	q := e.questions[e.idx].ForPlayer()
	ev := Event{
		Type:     EventQuestion,
		Index:    e.idx,
		Total:    len(e.questions),
		Question: &q,
	}
	if e.settings.Timed() {
		ev.TimeLimit = e.settings.TimeLimitPerQuestion
	}
	e.sink(ev)
}

func (e *Engine) startTimerLocked() {
	if !e.settings.Timed() {
		return
	}
	e.remaining = e.settings.TimeLimitPerQuestion
	gen := e.gen
	interval := e.tickInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if !e.tick(gen) {
				return
			}
		}
	}()
}

// tick advances the countdown by one second. Returns false when the ticker
// goroutine should exit, either because the countdown is stale or because
// the question expired.
func (e *Engine) tick(gen int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || gen != e.gen {
		return false
	}

	e.remaining--
	if e.remaining > 0 {
		e.sink(Event{Type: EventTick, Remaining: e.remaining})
		return true
	}

	// Time expired: record the sentinel and advance exactly like an
	// incorrect end-mode submission, with no reveal window.
	q := e.questions[e.idx]
	e.recordLocked(q, Submission{Selected: model.AnswerExpired}, false)
	e.advanceLocked()
	return false
}

// autoAdvance is the immediately-mode reveal-delay callback.
func (e *Engine) autoAdvance(gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || gen != e.gen || e.phase != PhaseRevealed {
		return
	}
	e.advanceLocked()
}
