package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quizdeck/quizdeck-backend/internal/middleware"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/play"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
	"github.com/quizdeck/quizdeck-backend/internal/wsproto"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// PlayHandler streams a quiz play-through over WebSocket. The connection
// lifetime is the attempt lifetime: connecting starts the attempt,
// disconnecting before completion abandons it.
type PlayHandler struct {
	playService *service.PlayService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewPlayHandler creates a new PlayHandler.
func NewPlayHandler(playService *service.PlayService, log zerolog.Logger, allowedOrigins []string) *PlayHandler {
	return &PlayHandler{
		playService: playService,
		log:         log.With().Str("component", "play_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/quizzes/:quiz_id/play?token=...
// Upgrades to WebSocket and runs one attempt: the server pushes question,
// tick, reveal, and completed events; the client sends answer and advance
// actions.
func (h *PlayHandler) Stream(c *gin.Context) {
	userID := middleware.GetUserID(c)
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	session, err := h.playService.Start(c.Request.Context(), quizID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		case errors.Is(err, service.ErrAttemptExists):
			response.Fail(c, http.StatusConflict, response.ErrAttemptExists)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.playService.Finish(session)
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	defer h.playService.Finish(session)

	wsLog := h.log.With().
		Str("session_id", session.ID.String()).
		Str("quiz_id", quizID.String()).
		Str("user_id", userID.String()).
		Logger()

	wsLog.Info().Msg("Player connected")

	// Writer: forwards engine events until completion or disconnect.
	writerDone := make(chan struct{})
	go h.writeEvents(conn, session, wsLog, writerDone)

	if err := session.Engine.Start(); err != nil {
		wsproto.WriteError(conn, "attempt already started")
		return
	}

	// Reader: applies client actions to the engine.
	for {
		var env wsproto.RequestEnvelope
		raw, err := readRaw(conn, &env)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		session.Touch()

		switch env.Action {
		case wsproto.ActionAnswer:
			h.handleAnswer(conn, session, raw)
		case wsproto.ActionAdvance:
			session.Engine.Advance()
		case wsproto.ActionPing:
			wsproto.WriteTyped(conn, wsproto.PongResponse{Event: wsproto.EventPong})
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			wsproto.WriteError(conn, "unknown action: "+string(env.Action))
		}

		if session.Engine.Completed() {
			// Let the writer flush the summary, then close.
			<-writerDone
			break
		}
	}
}

// handleAnswer decodes and submits one answer to the engine.
func (h *PlayHandler) handleAnswer(conn *websocket.Conn, session *service.PlaySession, raw []byte) {
	var req wsproto.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		wsproto.WriteError(conn, "malformed answer")
		return
	}

	sub := play.Submission{Selected: model.AnswerExpired, Text: req.Text}
	if req.Selected != nil {
		sub.Selected = *req.Selected
	} else if req.Text != "" {
		sub.Selected = 0
	}

	if err := session.Engine.Submit(sub); err != nil {
		wsproto.WriteError(conn, "no question is awaiting an answer")
	}
}

// writeEvents drains the session's event channel into the socket. On the
// completed event it persists the attempt and reports the outcome before
// exiting.
func (h *PlayHandler) writeEvents(conn *websocket.Conn, session *service.PlaySession, wsLog zerolog.Logger, done chan<- struct{}) {
	defer close(done)

	for ev := range session.Events {
		if err := wsproto.WriteTyped(conn, ev); err != nil {
			wsLog.Debug().Err(err).Msg("Event write failed")
			return
		}

		if ev.Type == play.EventCompleted {
			h.persistAttempt(conn, session, ev.Summary, wsLog)
			return
		}
	}
}

// readRaw reads one message and peeks at its action envelope. A body that is
// not valid JSON leaves the envelope zero, which routes to the unknown-action
// branch.
func readRaw(conn *websocket.Conn, env *wsproto.RequestEnvelope) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(30 * time.Minute))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(raw, env)
	return raw, nil
}

// persistAttempt saves the finished attempt. A failed save is surfaced to the
// player; the attempt is not retried.
func (h *PlayHandler) persistAttempt(conn *websocket.Conn, session *service.PlaySession, summary *play.Summary, wsLog zerolog.Logger) {
	attempt, err := h.playService.Complete(context.Background(), session, summary)
	if err != nil {
		wsproto.WriteError(conn, "your results could not be saved")
		return
	}

	wsLog.Info().
		Int("correct", attempt.CorrectAnswers).
		Int("total", attempt.TotalQuestions).
		Float64("percentage", attempt.Percentage).
		Msg("Attempt completed")
}
