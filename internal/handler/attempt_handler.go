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

// AttemptHandler handles the student portal: joining an exam, answering
// and submitting.
type AttemptHandler struct {
	attemptService *service.AttemptService
	examService    *service.ExamService
}

func NewAttemptHandler(attemptService *service.AttemptService, examService *service.ExamService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		examService:    examService,
	}
}

// GET /api/v1/portal/exams
func (h *AttemptHandler) ListAssignedExams(c *gin.Context) {
	exams, err := h.examService.ListAssigned(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failFromErr(c, err)
		return
	}

	// Students see the reduced exam shape only.
	views := make([]model.ExamAccessView, 0, len(exams))
	for i := range exams {
		views = append(views, exams[i].AccessView())
	}
	response.Success(c, http.StatusOK, gin.H{"exams": views})
}

// POST /api/v1/portal/validate-access
func (h *AttemptHandler) ValidateAccess(c *gin.Context) {
	var req model.ValidateAccessRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.examService.ValidateAccess(c.Request.Context(), middleware.UserID(c), req.ExamCode)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": view})
}

// POST /api/v1/portal/exams/:id/start
func (h *AttemptHandler) Start(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	attempt, err := h.attemptService.Start(c.Request.Context(), examID, middleware.UserID(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// GET /api/v1/portal/exams/:id/paper
func (h *AttemptHandler) Paper(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	paper, err := h.attemptService.Paper(c.Request.Context(), examID, middleware.UserID(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, paper)
}

// PUT /api/v1/portal/exams/:id/answers
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.attemptService.SaveAnswer(c.Request.Context(), examID, middleware.UserID(c), &req); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// POST /api/v1/portal/exams/:id/submit
func (h *AttemptHandler) Submit(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), examID, middleware.UserID(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/v1/portal/exams/:id/result
func (h *AttemptHandler) Result(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.attemptService.Result(c.Request.Context(), examID, middleware.UserID(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/v1/portal/results
func (h *AttemptHandler) MyResults(c *gin.Context) {
	attempts, err := h.attemptService.MyResults(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": attempts})
}
