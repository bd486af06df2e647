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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-scheduler-api/api/swagger"
	"github.com/noah-isme/timetable-scheduler-api/internal/handler"
	"github.com/noah-isme/timetable-scheduler-api/internal/middleware"
	"github.com/noah-isme/timetable-scheduler-api/internal/repository"
	"github.com/noah-isme/timetable-scheduler-api/internal/router"
	"github.com/noah-isme/timetable-scheduler-api/internal/service"
	"github.com/noah-isme/timetable-scheduler-api/pkg/cache"
	"github.com/noah-isme/timetable-scheduler-api/pkg/config"
	"github.com/noah-isme/timetable-scheduler-api/pkg/database"
	"github.com/noah-isme/timetable-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-scheduler-api/pkg/middleware/requestid"
)

// @title Timetable Scheduler API
// @version 1.0.0
// @description Weekly timetable generation from approved subject registrations.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db.DB, cfg.Database.MigrationTable, logr)
		if err != nil {
			logr.Fatal("failed to init migrator", zap.Error(err))
		}
		if err := migrator.Up(context.Background()); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		redisClient = nil
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()

	timetableRepo := repository.NewTimetableRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	labRepo := repository.NewLabRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled && redisClient != nil)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)
	timetableSvc := service.NewTimetableService(timetableRepo, sectionRepo, registrationRepo, timeSlotRepo, roomRepo, labRepo, db, cacheSvc, metricsSvc, validate, logr, cfg.Timetable.CacheTTL)
	registrationSvc := service.NewRegistrationService(registrationRepo, sectionRepo, teacherRepo, timeSlotRepo, db, validate, logr)
	catalogueSvc := service.NewCatalogueService(timeSlotRepo, roomRepo, labRepo, teacherRepo, sectionRepo, db, validate, logr)

	checks := []handler.DependencyCheck{{Name: "postgres", Ping: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.DependencyCheck{Name: "redis", Ping: cacheRepo.Ping})
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	router.Register(r, router.Handlers{
		Timetables:    handler.NewTimetableHandler(timetableSvc),
		Registrations: handler.NewRegistrationHandler(registrationSvc),
		Catalogue:     handler.NewCatalogueHandler(catalogueSvc, cfg.Import.MaxFileSizeBytes),
		Metrics:       handler.NewMetricsHandler(metricsSvc, checks...),
	}, router.Options{
		APIPrefix:     cfg.APIPrefix,
		ExposeMetrics: cfg.Metrics.Enabled,
		Auth:          middleware.JWT(tokenSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
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
