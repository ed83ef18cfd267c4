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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/camp-schedule-api/api/swagger"
	"github.com/noah-isme/camp-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/camp-schedule-api/internal/middleware"
	"github.com/noah-isme/camp-schedule-api/internal/repository"
	"github.com/noah-isme/camp-schedule-api/internal/service"
	"github.com/noah-isme/camp-schedule-api/pkg/cache"
	"github.com/noah-isme/camp-schedule-api/pkg/config"
	"github.com/noah-isme/camp-schedule-api/pkg/database"
	"github.com/noah-isme/camp-schedule-api/pkg/jobs"
	"github.com/noah-isme/camp-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/camp-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/camp-schedule-api/pkg/middleware/requestid"
)

// @title Camp Schedule API
// @version 0.1.0
// @description Daily camp schedule merging, time grids and conflict validation
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	gate := service.NewHydrationGate()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Reconcile.StateCacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, day state cache disabled", "error", err)
			redisClient = nil
		}
	}

	versionRepo := repository.NewScheduleVersionRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	leagueRepo := repository.NewLeagueRepository(db)
	dailyRepo := repository.NewDailyScheduleRepository(db)
	stateCacheRepo := repository.NewDayStateCacheRepository(redisClient, logr)
	defer stateCacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(stateCacheRepo, metricsSvc, cfg.Reconcile.StateCacheTTL, logr, redisClient != nil)
	store := service.NewDayStateStore()
	merger := service.NewVersionMerger(versionRepo, dailyRepo, leagueRepo, db, store, metricsSvc, logr)
	checker := service.NewConflictValidator(service.ValidatorConfig{
		IgnoredResources:   cfg.Validation.IgnoredResources,
		RequiredActivities: cfg.Validation.RequiredActivities,
		Clustering:         service.ClusteringMode(cfg.Validation.Clustering),
	})
	debouncer := jobs.NewDebouncer("reconcile", jobs.DebouncerConfig{Delay: cfg.Reconcile.Debounce, Logger: logr})

	daySvc := service.NewDayScheduleService(service.DayScheduleDeps{
		Versions:  versionRepo,
		Divisions: divisionRepo,
		Resources: resourceRepo,
		Leagues:   leagueRepo,
		Published: dailyRepo,
		Merger:    merger,
		Checker:   checker,
		Store:     store,
		Cache:     cacheSvc,
		Scheduler: debouncer,
		Gate:      gate,
		Metrics:   metricsSvc,
	}, validator.New(), logr, service.DayScheduleConfig{
		Increment:        cfg.Grid.IncrementMinutes,
		HydrationTimeout: cfg.Reconcile.HydrationTimeout,
	})
	// database and cache are connected; published days hydrate lazily on first read
	gate.MarkReady()

	dayHandler := handler.NewDayScheduleHandler(daySvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, gate)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.GET("/metrics/summary", metricsHandler.Summary)

	days := api.Group("/camps/:campId/days/:date")
	days.GET("", dayHandler.GetDay)
	days.POST("/versions", dayHandler.CreateVersion)
	days.POST("/reconcile", dayHandler.Reconcile)
	days.POST("/reconcile/schedule", dayHandler.ScheduleReconcile)
	days.GET("/validation", dayHandler.Validate)
	days.GET("/slots", dayHandler.LookupSlots)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	debouncer.Stop()
}
