package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/intern-progress-api/api/swagger"
	"github.com/noah-isme/intern-progress-api/internal/handler"
	internalmiddleware "github.com/noah-isme/intern-progress-api/internal/middleware"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/internal/repository"
	"github.com/noah-isme/intern-progress-api/internal/service"
	"github.com/noah-isme/intern-progress-api/pkg/cache"
	"github.com/noah-isme/intern-progress-api/pkg/config"
	"github.com/noah-isme/intern-progress-api/pkg/database"
	"github.com/noah-isme/intern-progress-api/pkg/logger"
	"github.com/noah-isme/intern-progress-api/pkg/messaging"
	corsmiddleware "github.com/noah-isme/intern-progress-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/intern-progress-api/pkg/middleware/requestid"
	"github.com/noah-isme/intern-progress-api/pkg/scheduler"
)

// @title Intern Progress API
// @version 1.0.0
// @description Intern mentorship progression: attendance, feedback, probation and promotion.
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Migrate {
		migrator, err := database.NewMigrator(cfg.Database, logr)
		if err != nil {
			logr.Fatal("failed to open migrator", zap.Error(err))
		}
		if err := migrator.Up(); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		_ = migrator.Close()
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	}

	engine, err := buildEngine(cfg.Progression)
	if err != nil {
		logr.Fatal("invalid progression settings", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	validate := validator.New()

	internRepo := repository.NewInternRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	internService := service.NewInternService(service.InternServiceParams{
		Interns: internRepo, Directory: mentorRepo, Lessons: lessonRepo, Feedback: feedbackRepo,
		Engine: engine, Cache: cacheService, Metrics: metrics, Validator: validate, Logger: logr,
	})
	lessonService := service.NewLessonService(service.LessonServiceParams{
		Interns: internRepo, Mentors: mentorRepo, Lessons: lessonRepo, Feedback: feedbackRepo,
		Engine: engine, Cache: cacheService, Metrics: metrics, Validator: validate, Logger: logr,
	})
	dashboardService := service.NewDashboardService(internRepo, lessonRepo, feedbackRepo, engine, cacheService, logr)
	mentorService := service.NewMentorService(mentorRepo, lessonRepo, engine.Calendar, logr)
	ratingService := service.NewRatingService(internRepo, engine, logr)
	violationService := service.NewViolationService(ruleRepo, internRepo, validate, logr)
	applicationService := service.NewApplicationService(applicationRepo, mentorRepo, engine.Grades, validate, logr)
	questionService := service.NewQuestionService(questionRepo, validate, logr)

	var publisher service.Publisher = messaging.NewLogPublisher(logr)
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := messaging.Dial(cfg.AMQP, logr)
		if err != nil {
			logr.Fatal("failed to connect message broker", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	var tasks *scheduler.Scheduler
	if cfg.Jobs.Enabled {
		reminders := service.NewReminderService(lessonRepo, internRepo, publisher, metrics, service.ReminderConfig{
			RoutingKey: cfg.AMQP.RoutingKey,
			Workers:    cfg.Jobs.ReminderWorkers,
			MaxRetries: cfg.Jobs.ReminderRetries,
			RetryDelay: cfg.Jobs.ReminderRetryDelay,
		}, logr)
		reminders.Start(ctx)
		defer reminders.Stop()

		tasks = scheduler.New(engine.Calendar.Location(), logr, scheduler.WithOnComplete(func(r scheduler.Result) {
			metrics.ObserveJob(r.Task, r.Duration, r.Error != "")
		}))
		if err := reminders.Register(tasks, cfg.Jobs.DebtReminderCron, cfg.Jobs.EvaluatedResetCron); err != nil {
			logr.Fatal("failed to register scheduled tasks", zap.Error(err))
		}
		tasks.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = tasks.Stop(stopCtx)
		}()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	checks := map[string]handler.Check{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jobHandler := handler.NewJobHandler(nil)
	if tasks != nil {
		jobHandler = handler.NewJobHandler(tasks)
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Interns:      handler.NewInternHandler(internService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Lessons:      handler.NewLessonHandler(lessonService),
		Mentors:      handler.NewMentorHandler(mentorService),
		Ratings:      handler.NewRatingHandler(ratingService),
		Violations:   handler.NewViolationHandler(violationService),
		Applications: handler.NewApplicationHandler(applicationService),
		Questions:    handler.NewQuestionHandler(questionService),
		Jobs:         jobHandler,
	})

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

func buildEngine(cfg config.ProgressionConfig) (*progression.Engine, error) {
	grades := progression.DefaultGradeTable()
	if cfg.GradeTableFile != "" {
		loaded, err := progression.LoadGradeTable(cfg.GradeTableFile)
		if err != nil {
			return nil, err
		}
		grades = loaded
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	restDay, err := progression.ParseWeekday(cfg.RestDay)
	if err != nil {
		return nil, err
	}
	window, err := progression.ParseFeedbackWindow(cfg.FeedbackWindow)
	if err != nil {
		return nil, err
	}
	proration, err := progression.ParseProration(cfg.ProrationMode)
	if err != nil {
		return nil, err
	}

	visits := progression.VisitPolicy{
		PendingLimit:            cfg.PendingLessonLimit,
		FeedbackRatioFloor:      cfg.FeedbackRatioFloor,
		FeedbackRatioMinLessons: cfg.FeedbackRatioMinLessons,
		OwnMentorShare:          cfg.OwnMentorShare,
	}
	calendar := progression.NewCalendar(restDay, loc, cfg.LessonsPerWorkday)
	engine := progression.NewEngine(grades, calendar, window, proration, visits)
	engine.StrictConcession = cfg.StrictConcession
	return engine, nil
}
