package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/config"
	"github.com/campusworks/examportal-backend/internal/database"
	"github.com/campusworks/examportal-backend/internal/handler"
	"github.com/campusworks/examportal-backend/internal/logger"
	"github.com/campusworks/examportal-backend/internal/repository"
	"github.com/campusworks/examportal-backend/internal/router"
	"github.com/campusworks/examportal-backend/internal/service"
	"github.com/campusworks/examportal-backend/internal/validator"
	"github.com/campusworks/examportal-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamPortal Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// Redis-backed session store, paper cache and monitor event bus.
	redisStore := service.NewRedisStore(rdb)

	// Services.
	authService := service.NewAuthService(userRepo, redisStore, log, cfg.JWTSecret, cfg.AccessExpiry, cfg.RefreshExpiry, cfg.BcryptCost)
	examService := service.NewExamService(examRepo, questionRepo, userRepo, redisStore, log, cfg.CodeLeadTime)
	questionService := service.NewQuestionService(questionRepo, examRepo, log)
	studentService := service.NewStudentService(userRepo, log, cfg.BcryptCost)
	attemptService := service.NewAttemptService(attemptRepo, examRepo, questionRepo, userRepo, redisStore, redisStore, log)
	resultService := service.NewResultService(attemptRepo, examRepo, userRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo, log)

	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Exam:      handler.NewExamHandler(examService),
		Question:  handler.NewQuestionHandler(questionService),
		Student:   handler.NewStudentHandler(studentService),
		Attempt:   handler.NewAttemptHandler(attemptService, examService),
		Result:    handler.NewResultHandler(resultService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Monitor:   handler.NewMonitorHandler(redisStore, examService, log, cfg.AllowedOrigins),
	}

	// Background sweeper for overdue attempts.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	sweepWorker := worker.NewSweepWorker(attemptService, log, cfg.SweepInterval)
	go sweepWorker.Start(workerCtx)

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
