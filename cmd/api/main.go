package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/config"
	"github.com/kboateng/adesua-go-api/internal/database"
	"github.com/kboateng/adesua-go-api/internal/handler"
	"github.com/kboateng/adesua-go-api/internal/middleware"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/repository"
	"github.com/kboateng/adesua-go-api/internal/router"
	"github.com/kboateng/adesua-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.Subject{},
		&models.AcademicTerm{},
		&models.ClassAssignment{},
		&models.Grade{},
		&models.ReportCard{},
		&models.AuditEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, summary caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, audit streaming disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	store := repository.NewStore(db)

	coordinator := service.NewAuditCoordinator(store.Audits, redisClient, natsConn, logger)
	resolver := service.NewAssignmentResolver(store, coordinator, validate, logger, cfg.SyntheticTeacher)
	gradeService := service.NewGradeService(store, resolver, coordinator, validate, logger, cfg.ReviewThreshold)
	reportService := service.NewReportService(store, redisClient, logger, cfg.ReportCacheTTL)
	termService := service.NewTermService(store, coordinator, validate, logger)
	auditService := service.NewAuditService(store.Audits, logger)
	seedService := service.NewSeedService(store, cfg.SeedEnabled, cfg.SeedToken, logger)

	gradeHandler := handler.NewGradeHandler(gradeService, logger)
	assignmentHandler := handler.NewAssignmentHandler(resolver, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	termHandler := handler.NewTermHandler(termService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradeHandler:      gradeHandler,
		AssignmentHandler: assignmentHandler,
		ReportHandler:     reportHandler,
		TermHandler:       termHandler,
		AuditHandler:      auditHandler,
		SeedHandler:       seedHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
