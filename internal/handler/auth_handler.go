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

// AuthHandler handles registration, login and token endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
