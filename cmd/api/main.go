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
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/config"
	"github.com/hikma-academy/academy-api/internal/database"
	"github.com/hikma-academy/academy-api/internal/grading"
	"github.com/hikma-academy/academy-api/internal/handler"
	"github.com/hikma-academy/academy-api/internal/middleware"
	"github.com/hikma-academy/academy-api/internal/models"
	"github.com/hikma-academy/academy-api/internal/repository"
	"github.com/hikma-academy/academy-api/internal/router"
	"github.com/hikma-academy/academy-api/internal/service"
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
		&models.Enrollment{},
		&models.Course{},
		&models.Lesson{},
		&models.Exam{},
		&models.ExamSubmission{},
		&models.PaymentProof{},
		&models.Group{},
		&models.GroupMessage{},
		&models.Notification{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	examRepo := repository.NewExamRepository(db)
	submissionRepo := repository.NewExamSubmissionRepository(db)
	paymentRepo := repository.NewPaymentProofRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	grader := grading.NewGrader(nil, logger)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	examService := service.NewExamService(examRepo, submissionRepo, courseRepo, grader, redisClient, cfg.ExamViewCacheTTL, validate, activityService, logger)
	paymentService := service.NewPaymentService(paymentRepo, courseRepo, validate, activityService, notificationService, logger)
	groupService := service.NewGroupService(groupRepo, courseRepo, validate, logger)
	dashboardService := service.NewStudentDashboardService(courseRepo, submissionRepo, examRepo, paymentRepo, redisClient, cfg.DashboardCacheTTL, logger)

	courseHandler := handler.NewCourseHandler(courseService, logger)
	examHandler := handler.NewExamHandler(examService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, 30*time.Second)
	studentDashboardHandler := handler.NewStudentDashboardHandler(dashboardService, logger)
	adminActivityHandler := handler.NewAdminActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:           courseHandler,
		ExamHandler:             examHandler,
		PaymentHandler:          paymentHandler,
		GroupHandler:            groupHandler,
		NotificationHandler:     notificationHandler,
		StudentDashboardHandler: studentDashboardHandler,
		AdminActivityHandler:    adminActivityHandler,
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

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
