package wsproto

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionAdvance Action = "advance"
	ActionPing    Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest submits an answer for the question currently shown.
// Selected carries the option index (0/1 for true-false); Text carries
// fill-in-the-blank input. Exactly one of them matters per question type.
type AnswerRequest struct {
	Action   Action `json:"action"`
	Selected *int   `json:"selected,omitempty"`
	Text     string `json:"text,omitempty"`
}

// AdvanceRequest moves past a revealed answer in untilCorrect mode.
type AdvanceRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventQuestion  Event = "question"
	EventTick      Event = "tick"
	EventReveal    Event = "reveal"
	EventCompleted Event = "completed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"type"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"type"`
}
