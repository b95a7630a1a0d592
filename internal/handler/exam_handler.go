package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/examportal-backend/internal/middleware"
	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
	"github.com/campusworks/examportal-backend/internal/validator"
)

// ExamHandler handles exam management and lifecycle endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// POST /api/v1/exams
func (h *ExamHandler) Create(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GET /api/v1/exams
func (h *ExamHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	exams, total, err := h.examService.List(c.Request.Context(), middleware.UserID(c), middleware.UserRole(c), perPage, (page-1)*perPage)
	if err != nil {
		failFromErr(c, err)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// GET /api/v1/exams/:id
func (h *ExamHandler) Get(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// PUT /api/v1/exams/:id
func (h *ExamHandler) Update(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DELETE /api/v1/exams/:id
func (h *ExamHandler) Delete(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.examService.Delete(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c)); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/v1/exams/:id/schedule
func (h *ExamHandler) Schedule(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.ScheduleExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Schedule(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// POST /api/v1/exams/:id/generate-code
func (h *ExamHandler) GenerateCode(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	exam, err := h.examService.GenerateCode(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"exam_code":         exam.ExamCode,
		"code_generated_at": exam.CodeGeneratedAt,
	})
}

// POST /api/v1/exams/:id/start
func (h *ExamHandler) Start(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	exam, err := h.examService.Start(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// POST /api/v1/exams/:id/end
func (h *ExamHandler) End(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	exam, err := h.examService.End(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// POST /api/v1/exams/:id/cancel
func (h *ExamHandler) Cancel(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.examService.Cancel(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c)); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// POST /api/v1/exams/:id/students
func (h *ExamHandler) AssignStudents(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.AssignStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assigned, err := h.examService.AssignStudents(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assigned": assigned})
}

// DELETE /api/v1/exams/:id/students/:studentId
func (h *ExamHandler) UnassignStudent(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	studentID, ok := pathUUID(c, "studentId")
	if !ok {
		return
	}
	if err := h.examService.UnassignStudent(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), studentID); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// GET /api/v1/exams/:id/students
func (h *ExamHandler) ListAssignedStudents(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	students, err := h.examService.ListAssignedStudents(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}
