package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/middleware"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
)

// LeaderboardHandler handles ranking and attempt management endpoints.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func failLeaderboard(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound), errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizOwner)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Get godoc
// GET /api/v1/quizzes/:quiz_id/leaderboard
// Returns the ranking: each user's best attempt, ordered by correct answers
// then earliest completion.
func (h *LeaderboardHandler) Get(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	entries, err := h.leaderboardService.Get(c.Request.Context(), quizID)
	if err != nil {
		failLeaderboard(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// ListAttempts godoc
// GET /api/v1/quizzes/:quiz_id/attempts
// The quiz owner sees all attempts, everyone else only their own.
func (h *LeaderboardHandler) ListAttempts(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	attempts, err := h.leaderboardService.ListAttempts(c.Request.Context(), quizID, middleware.GetUserID(c))
	if err != nil {
		failLeaderboard(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// DeleteAttempt godoc
// DELETE /api/v1/quizzes/:quiz_id/attempts/:attempt_id
// Owner-only.
func (h *LeaderboardHandler) DeleteAttempt(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}
	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.leaderboardService.DeleteAttempt(c.Request.Context(), quizID, attemptID, middleware.GetUserID(c)); err != nil {
		failLeaderboard(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetAttempts godoc
// DELETE /api/v1/quizzes/:quiz_id/attempts
// Owner-only. Clears the quiz's history and leaderboard.
func (h *LeaderboardHandler) ResetAttempts(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if err := h.leaderboardService.ResetAttempts(c.Request.Context(), quizID, middleware.GetUserID(c)); err != nil {
		failLeaderboard(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
