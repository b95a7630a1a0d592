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

// StudentHandler handles examiner-side student management.
type StudentHandler struct {
	studentService *service.StudentService
}

func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// GET /api/v1/students
func (h *StudentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	students, total, err := h.studentService.List(c.Request.Context(), middleware.UserID(c), middleware.UserRole(c), perPage, (page-1)*perPage)
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
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	studentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	student, err := h.studentService.Get(c.Request.Context(), studentID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	studentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), studentID, middleware.UserID(c), middleware.UserRole(c), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	studentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.studentService.Delete(c.Request.Context(), studentID, middleware.UserID(c), middleware.UserRole(c)); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
