package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hikma-academy/academy-api/internal/config"
	"github.com/hikma-academy/academy-api/internal/handler"
	"github.com/hikma-academy/academy-api/internal/middleware"
	"github.com/hikma-academy/academy-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler           *handler.CourseHandler
	ExamHandler             *handler.ExamHandler
	PaymentHandler          *handler.PaymentHandler
	GroupHandler            *handler.GroupHandler
	NotificationHandler     *handler.NotificationHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	AdminActivityHandler    *handler.AdminActivityHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		courses := app.Group("/api/v1/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.ExamHandler != nil {
		exams := app.Group("/api/v1/exams", jwtMiddleware, middleware.RateLimit("exams", 30, time.Minute))
		deps.ExamHandler.Register(exams)
	}

	if deps.PaymentHandler != nil {
		payments := app.Group("/api/v1/payments", jwtMiddleware, middleware.RateLimit("payments", 10, time.Minute))
		deps.PaymentHandler.Register(payments)
	}

	if deps.GroupHandler != nil {
		groups := app.Group("/api/v1/groups", jwtMiddleware)
		deps.GroupHandler.Register(groups)
	}

	if deps.NotificationHandler != nil {
		notifications := app.Group("/api/v1/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.StudentDashboardHandler != nil {
		student := app.Group("/api/v1/student", jwtMiddleware)
		deps.StudentDashboardHandler.Register(student)
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("admin", "teacher"))
	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterAdmin(admin)
	}
	if deps.ExamHandler != nil {
		deps.ExamHandler.RegisterAdmin(admin)
	}
	if deps.PaymentHandler != nil {
		deps.PaymentHandler.RegisterAdmin(admin)
	}
	if deps.GroupHandler != nil {
		deps.GroupHandler.RegisterAdmin(admin)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.RegisterAdmin(admin)
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin)
	}
}
