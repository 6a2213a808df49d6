package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"velum-go/internal/auth"
	"velum-go/internal/config"
	"velum-go/internal/database"
	"velum-go/internal/handlers"
	logger "velum-go/internal/logging"
	"velum-go/internal/repository"
	"velum-go/internal/router"
	"velum-go/internal/services"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Config and log files are resolved relative to VELUM_ROOT, default ".".
	projectRoot := os.Getenv("VELUM_ROOT")
	if projectRoot == "" {
		projectRoot = "."
	}

	conf, v, err := config.Load(projectRoot)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.Init(projectRoot, conf.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	config.Watch(v, log)

	db, err := database.Init(conf.Database, projectRoot, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Seed(ctx, db, conf.Seed, projectRoot, log); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	logRepo := repository.NewLogRepository(db)
	gameRepo := repository.NewGameRepository(db)

	// Services
	logService := services.NewLogService(logRepo, log)
	settingsService := services.NewSettingsService(settingRepo, logService,
		func() config.AIConfig { return config.Current().AI }, log)
	ai := services.NewAIClient(settingsService, nil, log)

	userService := services.NewUserService(userRepo, logService, conf.Seed.AdminUsername, log)
	questionnaireService := services.NewQuestionnaireService(questionnaireRepo, ai, logService, log)
	taskService := services.NewTaskService(taskRepo, userRepo, questionnaireRepo, logService, log)
	assessmentService := services.NewAssessmentService(db, assessmentRepo, taskRepo, questionnaireRepo, logService,
		func() bool { return config.Current().Scoring.StrictAnswers }, log)
	analysisService := services.NewAnalysisService(assessmentRepo, userRepo, questionnaireRepo, ai, logService, log)
	chatService := services.NewChatService(chatRepo, ai, log)
	dashboardService := services.NewDashboardService(userRepo, taskRepo, assessmentRepo, log)
	gameService := services.NewGameService(gameRepo, log)

	tokens, err := auth.NewTokenManager(conf.Server.JWTSecret, conf.Server.JWTIssuer, conf.Server.TokenTTL)
	if err != nil {
		log.Fatal("Failed to initialize token manager", zap.Error(err))
	}
	if conf.Server.JWTSecret == "" {
		log.Warn("No JWT secret configured; using a random one, tokens will not survive a restart")
	}

	scheduler := services.NewScheduler(log, analysisService, taskService, ai,
		func() config.SchedulerConfig { return config.Current().Scheduler })
	scheduler.Start(ctx)

	r := router.Setup(log, conf.Server, tokens, &router.Handlers{
		Auth:          handlers.NewAuthHandler(userService, tokens, log),
		Users:         handlers.NewUserHandler(userService, log),
		Questionnaire: handlers.NewQuestionnaireHandler(questionnaireService, log),
		Tasks:         handlers.NewTaskHandler(taskService, log),
		Assessments:   handlers.NewAssessmentHandler(assessmentService, log),
		Analysis:      handlers.NewAnalysisHandler(analysisService, log),
		Chat:          handlers.NewChatHandler(chatService, log),
		Settings:      handlers.NewSettingsHandler(settingsService, log),
		Logs:          handlers.NewLogsHandler(logService, log),
		Dashboard:     handlers.NewDashboardHandler(dashboardService, log),
		Games:         handlers.NewGameHandler(gameService, log),
		Health:        handlers.NewHealthHandler(db, log),
	})

	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening on http://localhost" + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	scheduler.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
