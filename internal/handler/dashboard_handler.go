package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusworks/examportal-backend/internal/middleware"
	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
)

// DashboardHandler serves the examiner/admin overview.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	data, err := h.dashboardService.Overview(c.Request.Context(), middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dashboard": data})
}
