package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/examportal-backend/internal/middleware"
	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
	"github.com/campusworks/examportal-backend/internal/validator"
)

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// POST /api/v1/exams/:id/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// POST /api/v1/exams/:id/questions/bulk
func (h *QuestionHandler) BulkCreate(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.BulkCreateQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.BulkCreate(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"questions": questions, "count": len(questions)})
}

// GET /api/v1/exams/:id/questions
func (h *QuestionHandler) List(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	questions, err := h.questionService.List(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GET /api/v1/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	questionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	question, err := h.questionService.Get(c.Request.Context(), questionID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// PUT /api/v1/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	questionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), questionID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DELETE /api/v1/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	questionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), questionID, middleware.UserID(c), middleware.UserRole(c)); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
