package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/okr-performance-api/api/swagger"
	"github.com/noah-isme/okr-performance-api/internal/handler"
	"github.com/noah-isme/okr-performance-api/internal/middleware"
	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	"github.com/noah-isme/okr-performance-api/internal/service"
	"github.com/noah-isme/okr-performance-api/pkg/cache"
	"github.com/noah-isme/okr-performance-api/pkg/config"
	"github.com/noah-isme/okr-performance-api/pkg/database"
	"github.com/noah-isme/okr-performance-api/pkg/jobs"
	"github.com/noah-isme/okr-performance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/okr-performance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/okr-performance-api/pkg/middleware/requestid"
)

// @title OKR Performance API
// @version 1.0.0
// @description Task score distribution, review aggregation and monthly performance ranking
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type handlers struct {
	tasks       *handler.TaskHandler
	reviews     *handler.ReviewHandler
	evaluations *handler.EvaluationHandler
	performance *handler.PerformanceHandler
	reports     *handler.DepartmentReportHandler
	metrics     *handler.MetricsHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logr),
		metricsSvc,
		cfg.Cache.TTL,
		logr,
		cfg.Cache.Enabled && redisClient != nil,
	)

	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	scores := repository.NewScoreRepository(db)
	reviews := repository.NewReviewRepository(db)
	workHours := repository.NewWorkHoursRepository(db)
	evaluations := repository.NewEvaluationRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	taskScoreSvc := service.NewTaskScoreService(tasks, scores, cacheSvc, logr)
	taskSvc := service.NewTaskService(tasks, taskScoreSvc, validate, logr)
	reviewSvc := service.NewReviewService(reviews, tasks, users, scores, cacheSvc,
		service.ReviewServiceConfig{RedistributeOnReview: cfg.Scoring.RedistributeOnReview}, validate, logr)
	reportSvc := service.NewDepartmentReportService(users, scores, reportRepo, performanceRepo, cacheSvc, logr, nil, nil)
	performanceSvc := service.NewPerformanceService(service.PerformanceDeps{
		Users:       users,
		WorkHours:   workHours,
		Tasks:       tasks,
		Allocations: scores,
		Reviews:     reviews,
		Evaluations: evaluations,
		Scores:      performanceRepo,
		Reports:     reportSvc,
	}, scoring.NewEngine(), cacheSvc, metricsSvc, service.PerformanceConfig{
		BatchConcurrency: cfg.Scoring.BatchConcurrency,
		RollupAfterBatch: cfg.Reports.RollupAfterBatch,
	}, logr)
	evaluationSvc := service.NewEvaluationService(workHours, evaluations, users, performanceSvc, validate, logr)

	worker := service.NewRecalcWorker(performanceSvc, logr)
	queue := jobs.NewQueue("recalc", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Recalc.Workers,
		MaxRetries: cfg.Recalc.Retries,
		RetryDelay: cfg.Recalc.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	recalcSvc := service.NewRecalcService(queue, logr)

	if cfg.Recalc.CronEnabled {
		scheduler, err := recalcSvc.StartSchedule(cfg.Recalc.CronSchedule)
		if err != nil {
			logr.Fatal("failed to start recalculation schedule", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	h := handlers{
		tasks:       handler.NewTaskHandler(taskSvc, taskScoreSvc),
		reviews:     handler.NewReviewHandler(reviewSvc),
		evaluations: handler.NewEvaluationHandler(evaluationSvc),
		performance: handler.NewPerformanceHandler(performanceSvc, recalcSvc),
		reports:     handler.NewDepartmentReportHandler(reportSvc),
		metrics: handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
			"postgres": func(ctx context.Context) error { return database.Ping(ctx, db) },
			"redis":    func(ctx context.Context) error { return cache.Ping(ctx, redisClient) },
		}),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix, middleware.JWT(authSvc)), h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func registerRoutes(api *gin.RouterGroup, h handlers) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	api.GET("/metrics/snapshot", admin, h.metrics.Snapshot)

	api.PATCH("/tasks/:id/status", h.tasks.UpdateStatus)
	api.POST("/tasks/:id/score", h.tasks.RecalculateScore)
	api.GET("/tasks/:id/score", h.tasks.GetScore)
	api.GET("/users/:id/monthly-score", middleware.AdminOrSelf(), h.tasks.UserMonthlyScore)

	reviews := api.Group("/reviews")
	reviews.POST("/tasks", h.reviews.SubmitTaskReview)
	reviews.GET("/tasks/:id", h.reviews.ListTaskReviews)
	reviews.GET("/tasks/:id/summary", h.reviews.TaskSummary)
	reviews.POST("/monthly", h.reviews.SubmitMonthlyReview)
	reviews.GET("/monthly", h.reviews.ListMonthlyReviews)
	reviews.GET("/reviewable/tasks", h.reviews.ReviewableTasks)
	reviews.GET("/reviewable/users", h.reviews.ReviewableUsers)

	api.PUT("/work-hours", admin, h.evaluations.RecordWorkHours)

	evaluations := api.Group("/evaluations")
	evaluations.POST("/self", h.evaluations.SubmitSelf)
	evaluations.POST("/peer", h.evaluations.SubmitPeer)
	evaluations.PATCH("/:id/admin", admin, h.evaluations.SetAdminOverride)
	evaluations.GET("/:id/admin-history", admin, h.evaluations.AdminHistory)

	performance := api.Group("/performance")
	performance.GET("/jobs/:id", admin, h.performance.JobStatus)
	performance.POST("/:month/calculate", admin, h.performance.CalculateMonth)
	performance.POST("/:month/rerank", admin, h.performance.Rerank)
	performance.POST("/:month/users/:id/calculate", admin, h.performance.CalculateUser)
	performance.GET("/:month/ranking", h.performance.Ranking)
	performance.GET("/:month/users/:id", middleware.AdminOrSelf(), h.performance.UserSummary)

	reports := api.Group("/reports/:month")
	reports.POST("/departments/regenerate", admin, h.reports.Regenerate)
	reports.GET("/departments", h.reports.List)
	reports.GET("/departments/:department", h.reports.Department)
	reports.GET("/export", h.reports.Export)
}
