package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"

	_ "github.com/campusdesk/booking-api/api/swagger"
	"github.com/campusdesk/booking-api/internal/handler"
	"github.com/campusdesk/booking-api/internal/repository"
	"github.com/campusdesk/booking-api/internal/router"
	"github.com/campusdesk/booking-api/internal/service"
	"github.com/campusdesk/booking-api/migrations"
	"github.com/campusdesk/booking-api/pkg/cache"
	"github.com/campusdesk/booking-api/pkg/config"
	"github.com/campusdesk/booking-api/pkg/database"
	"github.com/campusdesk/booking-api/pkg/logger"
)

// @title CampusDesk Booking API
// @version 1.0.0
// @description Role-based appointment booking between students and teachers
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS, "."); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, directory cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	teacherRepo := repository.NewTeacherProfileRepository(db)
	studentRepo := repository.NewStudentProfileRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	auditSvc := service.NewAuditService(auditRepo, service.AuditQueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
	}, logr)
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	registrationSvc := service.NewRegistrationService(userRepo, studentRepo, auditSvc, validate, logr)
	slotSvc := service.NewSlotService(slotRepo, validate, logr)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, metricsSvc, validate, logr)
	directorySvc := service.NewDirectoryService(teacherRepo, slotSvc, cacheRepo, metricsSvc, cfg.Directory.CacheTTL, logr)
	profileSvc := service.NewProfileService(teacherRepo, userRepo, cacheRepo, validate, logr)
	adminSvc := service.NewAdminService(studentRepo, teacherRepo, appointmentRepo, auditSvc, logr)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc, registrationSvc),
		Slot:        handler.NewSlotHandler(slotSvc),
		Appointment: handler.NewAppointmentHandler(appointmentSvc),
		Directory:   handler.NewDirectoryHandler(directorySvc),
		Profile:     handler.NewProfileHandler(profileSvc),
		Admin:       handler.NewAdminHandler(adminSvc, registrationSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, db),
	}

	engine := router.Setup(cfg, handlers, router.Deps{
		Auth:     authSvc,
		Metrics:  metricsSvc,
		Students: studentRepo,
		Logger:   logr,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := engine.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
