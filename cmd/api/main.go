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
	"github.com/rs/zerolog"

	"github.com/smkdev-id/simagang-api/internal/config"
	"github.com/smkdev-id/simagang-api/internal/database"
	"github.com/smkdev-id/simagang-api/internal/handler"
	"github.com/smkdev-id/simagang-api/internal/middleware"
	"github.com/smkdev-id/simagang-api/internal/models"
	"github.com/smkdev-id/simagang-api/internal/repository"
	"github.com/smkdev-id/simagang-api/internal/router"
	"github.com/smkdev-id/simagang-api/internal/service"
	cloud "github.com/smkdev-id/simagang-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to load reporting timezone: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Teacher{},
		&models.Company{},
		&models.Placement{},
		&models.JournalEntry{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := database.InstallConstraints(db); err != nil {
		log.Fatalf("failed to install schema constraints: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	placementRepo := repository.NewPlacementRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	companyRepo := repository.NewCompanyRepository(db)

	activityService := service.NewActivityService(activityRepo, natsConn, cfg.ActivitySubject, validate, logger)
	placementService := service.NewPlacementService(placementRepo, studentRepo, teacherRepo, companyRepo, validate, activityService, loc, logger)
	journalService := service.NewJournalService(journalRepo, placementRepo, studentRepo, teacherRepo, validate, activityService, loc, logger)
	dashboardService := service.NewDashboardService(placementRepo, journalRepo, redisClient, cfg.DashboardCacheTTL, logger)
	companyService := service.NewCompanyService(companyRepo, logger)
	uploadService := service.NewUploadService(uploader, logger)

	placementHandler := handler.NewPlacementHandler(placementService, logger)
	journalHandler := handler.NewJournalHandler(journalService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	companyHandler := handler.NewCompanyHandler(companyService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		PlacementHandler: placementHandler,
		JournalHandler:   journalHandler,
		ActivityHandler:  activityHandler,
		DashboardHandler: dashboardHandler,
		CompanyHandler:   companyHandler,
		UploadHandler:    uploadHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
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
