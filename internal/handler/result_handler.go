package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/examportal-backend/internal/middleware"
	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
)

// ResultHandler handles examiner-side results, stats and export.
type ResultHandler struct {
	resultService *service.ResultService
}

func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// GET /api/v1/exams/:id/results
func (h *ResultHandler) ExamResults(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.resultService.ExamResults(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": rows})
}

// GET /api/v1/students/:id/results
func (h *ResultHandler) StudentResults(c *gin.Context) {
	studentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	attempts, err := h.resultService.StudentResults(c.Request.Context(), studentID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": attempts})
}

// GET /api/v1/exams/:id/stats
func (h *ResultHandler) ExamStats(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.resultService.Stats(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GET /api/v1/exams/:id/results/export
func (h *ResultHandler) ExportCSV(c *gin.Context) {
	examID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-%s-results.csv"`, examID))

	err := h.resultService.ExportCSV(c.Request.Context(), examID, middleware.UserID(c), middleware.UserRole(c), c.Writer)
	if err != nil {
		// Nothing has been written yet on the error paths, so a JSON
		// error body is still safe.
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", "")
		failFromErr(c, err)
		return
	}
}
