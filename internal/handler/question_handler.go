package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/middleware"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
	"github.com/quizdeck/quizdeck-backend/internal/validator"
)

// maxImportBytes caps the accepted size of a question import file.
const maxImportBytes = 2 << 20 // 2 MiB

// QuestionHandler handles question authoring endpoints. All routes are
// owner-only; the service enforces ownership.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// failQuestion maps question service errors onto API error responses.
func failQuestion(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound), errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizOwner)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// List godoc
// GET /api/v1/quizzes/:quiz_id/questions
// Returns questions with answers included. Owner-only.
func (h *QuestionHandler) List(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	questions, err := h.questionService.ListByQuiz(c.Request.Context(), quizID, middleware.GetUserID(c))
	if err != nil {
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Create godoc
// POST /api/v1/quizzes/:quiz_id/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Add(c.Request.Context(), quizID, middleware.GetUserID(c), &req)
	if err != nil {
		var invalid *service.InvalidQuestionError
		if errors.As(err, &invalid) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"question": invalid.Error()})
			return
		}
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Update godoc
// PUT /api/v1/quizzes/:quiz_id/questions/:question_id
func (h *QuestionHandler) Update(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), quizID, questionID, middleware.GetUserID(c), &req)
	if err != nil {
		var invalid *service.InvalidQuestionError
		if errors.As(err, &invalid) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"question": invalid.Error()})
			return
		}
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/quizzes/:quiz_id/questions/:question_id
func (h *QuestionHandler) Delete(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), quizID, questionID, middleware.GetUserID(c)); err != nil {
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Import godoc
// POST /api/v1/quizzes/:quiz_id/questions/import
// Accepts a JSON array of questions as multipart field "file" (or the raw
// request body). Valid items import even when others fail; per-item errors
// come back in "reports".
func (h *QuestionHandler) Import(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	data, err := readImportBody(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrImportInvalid)
		return
	}

	imported, reports, err := h.questionService.Import(c.Request.Context(), quizID, middleware.GetUserID(c), data)
	if err != nil {
		if errors.Is(err, model.ErrImportNotJSON) || errors.Is(err, model.ErrImportNotArray) {
			response.Fail(c, http.StatusBadRequest, response.ErrImportInvalid)
			return
		}
		failQuestion(c, err)
		return
	}

	if reports == nil {
		reports = []model.ImportReport{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"imported": imported,
		"rejected": len(reports),
		"reports":  reports,
	})
}

func readImportBody(c *gin.Context) ([]byte, error) {
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxImportBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
}
