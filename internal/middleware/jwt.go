package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// RequireAuth validates the bearer token and stores the caller's identity
// in the gin context. WebSocket upgrades cannot set headers, so a token
// query parameter is accepted as a fallback.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := auth.ParseAccessToken(token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// UserID returns the authenticated caller's ID from the gin context.
func UserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(ContextUserIDKey)
	userID, _ := id.(uuid.UUID)
	return userID
}

// UserRole returns the authenticated caller's role from the gin context.
func UserRole(c *gin.Context) model.Role {
	role, _ := c.Get(ContextRoleKey)
	r, _ := role.(model.Role)
	return r
}
