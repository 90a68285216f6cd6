package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/middleware"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
	"github.com/quizdeck/quizdeck-backend/internal/validator"
)

// QuizHandler handles quiz CRUD endpoints.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// quizIDParam parses the :quiz_id path segment, failing the request on a
// malformed UUID.
func quizIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failQuiz maps quiz service errors onto API error responses.
func failQuiz(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizOwner)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// List godoc
// GET /api/v1/quizzes?page=&per_page=&search=&mine=
// Lists quizzes. mine=true restricts to the caller's own quizzes.
func (h *QuizHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	ownerID := uuid.Nil
	if c.Query("mine") == "true" {
		ownerID = middleware.GetUserID(c)
	}

	quizzes, pagination, err := h.quizService.List(c.Request.Context(), ownerID, page, perPage, search)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, pagination)
}

// Get godoc
// GET /api/v1/quizzes/:quiz_id
func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), quizID)
	if err != nil {
		failQuiz(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Create godoc
// POST /api/v1/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// Update godoc
// PATCH /api/v1/quizzes/:quiz_id
// Owner-only.
func (h *QuizHandler) Update(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), quizID, middleware.GetUserID(c), &req)
	if err != nil {
		failQuiz(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/quizzes/:quiz_id
// Owner-only. Questions and attempts are removed with the quiz.
func (h *QuizHandler) Delete(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID, middleware.GetUserID(c)); err != nil {
		failQuiz(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetPlayPayload godoc
// GET /api/v1/quizzes/:quiz_id/payload
// Returns the player-facing view: settings plus questions with answers
// stripped. Served from the Redis cache.
func (h *QuizHandler) GetPlayPayload(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	payload, err := h.quizService.GetPlayPayload(c.Request.Context(), quizID)
	if err != nil {
		failQuiz(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payload": payload})
}
