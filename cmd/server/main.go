package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusops/ccrm-api/api/swagger"
	"github.com/campusops/ccrm-api/internal/codec"
	"github.com/campusops/ccrm-api/internal/handler"
	internalmiddleware "github.com/campusops/ccrm-api/internal/middleware"
	"github.com/campusops/ccrm-api/internal/repository"
	"github.com/campusops/ccrm-api/internal/service"
	"github.com/campusops/ccrm-api/pkg/backup"
	"github.com/campusops/ccrm-api/pkg/cache"
	"github.com/campusops/ccrm-api/pkg/config"
	"github.com/campusops/ccrm-api/pkg/jobs"
	"github.com/campusops/ccrm-api/pkg/logger"
	corsmiddleware "github.com/campusops/ccrm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/ccrm-api/pkg/middleware/requestid"
	"github.com/campusops/ccrm-api/pkg/storage"
)

// @title CCRM API
// @version 1.0.0
// @description Campus Course Records Manager
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

	validate := validator.New()

	studentRepo := repository.NewStudentRepository()
	courseRepo := repository.NewCourseRepository()
	enrollmentRepo := repository.NewEnrollmentRepository()

	metricsSvc := service.NewMetricsService(service.RecordCounts{
		Students:    func() int { return studentRepo.Count(context.Background()) },
		Courses:     func() int { return courseRepo.Count(context.Background()) },
		Enrollments: func() int { return enrollmentRepo.Count(context.Background()) },
	})

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
			cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
		} else {
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(client, logr), metricsSvc, cfg.Cache.TTL, logr, true)
		}
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	}

	csvCodec := codec.NewCSVCodec(cfg.Data.Dir, logr)

	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(studentRepo, courseRepo, enrollmentRepo, logr)
	statsSvc := service.NewStatsService(studentSvc, courseSvc, enrollmentSvc, cacheSvc, logr)
	persistenceSvc := service.NewPersistenceService(csvCodec, studentRepo, courseRepo, enrollmentRepo, enrollmentSvc, logr)

	backupMgr := backup.NewManager(cfg.Data.Dir, cfg.Backup.Dir, logr)
	backupSvc := service.NewBackupService(backupMgr, persistenceSvc, cfg.Backup.KeepCount, logr)

	reportStore, err := storage.NewLocalStorage(cfg.Reports.Dir)
	if err != nil {
		logr.Fatal("failed to prepare reports directory", zap.Error(err))
	}
	reportSvc := service.NewReportService(studentRepo, courseRepo, enrollmentRepo, reportStore, logr)

	var authSvc *service.AuthService
	if cfg.Auth.Enabled {
		userRepo := repository.NewUserRepository()
		authSvc = service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
			AccessTokenSecret:  cfg.JWT.Secret,
			AccessTokenExpiry:  cfg.JWT.Expiration,
			RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
			Issuer:             cfg.JWT.Issuer,
		})
		if err := authSvc.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logr.Fatal("failed to seed admin account", zap.Error(err))
		}
	}

	if _, err := persistenceSvc.LoadAll(ctx); err != nil {
		logr.Warn("initial data load failed, starting empty", zap.Error(err))
	}

	saveQueue := jobs.NewQueue("autosave", func(ctx context.Context, job jobs.Job) error {
		if _, err := persistenceSvc.SaveAll(ctx); err != nil {
			return err
		}
		metricsSvc.RecordSave()
		return nil
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	saveQueue.Start(ctx)
	defer saveQueue.Stop()

	if cfg.Data.AutosaveEnabled {
		go func() {
			ticker := time.NewTicker(cfg.Data.AutosaveInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := saveQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Kind: "autosave"}); err != nil {
						logr.Warn("failed to enqueue autosave", zap.Error(err))
					}
				}
			}
		}()
	}

	if cfg.Reports.ResultTTL > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if deleted, err := reportStore.CleanupOlderThan(cfg.Reports.ResultTTL); err != nil {
						logr.Warn("report cleanup failed", zap.Error(err))
					} else if len(deleted) > 0 {
						logr.Info("stale reports removed", zap.Int("count", len(deleted)))
					}
				}
			}
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
	r.Use(internalmiddleware.Metrics(metricsSvc))

	handlers := handler.Handlers{
		Students:    handler.NewStudentHandler(studentSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc, statsSvc),
		Data:        handler.NewDataHandler(persistenceSvc, metricsSvc, statsSvc),
		Backups:     handler.NewBackupHandler(backupSvc, metricsSvc),
		Reports:     handler.NewReportHandler(reportSvc),
		Stats:       handler.NewStatsHandler(statsSvc, metricsSvc),
		Auth:        handler.NewAuthHandler(authSvc),
	}
	handler.RegisterRoutes(r, handlers, handler.RouterOptions{
		APIPrefix:   cfg.APIPrefix,
		AuthEnabled: cfg.Auth.Enabled,
		AuthService: authSvc,
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}

	if _, err := persistenceSvc.SaveAll(context.Background()); err != nil {
		logr.Error("final save failed", zap.Error(err))
	}
}
