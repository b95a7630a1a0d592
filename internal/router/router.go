package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusworks/examportal-backend/internal/config"
	"github.com/campusworks/examportal-backend/internal/handler"
	"github.com/campusworks/examportal-backend/internal/middleware"
	"github.com/campusworks/examportal-backend/internal/model"
	"github.com/campusworks/examportal-backend/internal/response"
	"github.com/campusworks/examportal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Exam      *handler.ExamHandler
	Question  *handler.QuestionHandler
	Student   *handler.StudentHandler
	Attempt   *handler.AttemptHandler
	Result    *handler.ResultHandler
	Dashboard *handler.DashboardHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with their middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set, restrict CORS to that list; otherwise
	// allow all so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes are public and rate limited against credential guessing.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	requireAuth := middleware.RequireAuth(authService)
	requireConductor := middleware.RequireRole(model.RoleExaminer, model.RoleAdmin)
	requireStudent := middleware.RequireRole(model.RoleStudent)

	// Examiner/admin side: exam management, lifecycle, questions,
	// students, results.
	api := router.Group("/api/v1")
	api.Use(requireAuth)
	{
		exams := api.Group("/exams")
		exams.Use(requireConductor)
		{
			exams.POST("", handlers.Exam.Create)
			exams.GET("", handlers.Exam.List)
			exams.GET("/:id", handlers.Exam.Get)
			exams.PUT("/:id", handlers.Exam.Update)
			exams.DELETE("/:id", handlers.Exam.Delete)

			exams.POST("/:id/schedule", handlers.Exam.Schedule)
			exams.POST("/:id/generate-code", handlers.Exam.GenerateCode)
			exams.POST("/:id/start", handlers.Exam.Start)
			exams.POST("/:id/end", handlers.Exam.End)
			exams.POST("/:id/cancel", handlers.Exam.Cancel)

			exams.POST("/:id/students", handlers.Exam.AssignStudents)
			exams.GET("/:id/students", handlers.Exam.ListAssignedStudents)
			exams.DELETE("/:id/students/:studentId", handlers.Exam.UnassignStudent)

			exams.POST("/:id/questions", handlers.Question.Create)
			exams.POST("/:id/questions/bulk", handlers.Question.BulkCreate)
			exams.GET("/:id/questions", handlers.Question.List)

			exams.GET("/:id/results", handlers.Result.ExamResults)
			exams.GET("/:id/results/export", handlers.Result.ExportCSV)
			exams.GET("/:id/stats", handlers.Result.ExamStats)
		}

		api.GET("/dashboard", requireConductor, handlers.Dashboard.Overview)

		questions := api.Group("/questions")
		questions.Use(requireConductor)
		{
			questions.GET("/:id", handlers.Question.Get)
			questions.PUT("/:id", handlers.Question.Update)
			questions.DELETE("/:id", handlers.Question.Delete)
		}

		students := api.Group("/students")
		students.Use(requireConductor)
		{
			students.POST("", handlers.Student.Create)
			students.GET("", handlers.Student.List)
			students.GET("/:id", handlers.Student.Get)
			students.PUT("/:id", handlers.Student.Update)
			students.DELETE("/:id", handlers.Student.Delete)
			students.GET("/:id/results", handlers.Result.StudentResults)
		}

		// Student portal: code validation, sitting the exam, results.
		portal := api.Group("/portal")
		portal.Use(requireStudent)
		{
			portal.GET("/exams", handlers.Attempt.ListAssignedExams)
			portal.POST("/validate-access", handlers.Attempt.ValidateAccess)
			portal.POST("/exams/:id/start", handlers.Attempt.Start)
			portal.GET("/exams/:id/paper", handlers.Attempt.Paper)
			portal.PUT("/exams/:id/answers", handlers.Attempt.SaveAnswer)
			portal.POST("/exams/:id/submit", handlers.Attempt.Submit)
			portal.GET("/exams/:id/result", handlers.Attempt.Result)
			portal.GET("/results", handlers.Attempt.MyResults)
		}
	}

	// WebSocket: examiner live monitor. Auth accepts the token query
	// parameter since browsers cannot set WS headers.
	ws := router.Group("/ws/v1")
	ws.Use(requireAuth, requireConductor)
	{
		ws.GET("/exams/:id/monitor", handlers.Monitor.ExamMonitor)
	}

	return router
}
