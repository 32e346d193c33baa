// Package server assembles the agenda web application.
package server

import (
	"errors"
	"time"

	"agenda/internal/config"
	"agenda/internal/handlers"
	"agenda/internal/metrics"
	"agenda/internal/middleware"
	"agenda/internal/repositories"
	"agenda/internal/services"
	"agenda/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Option customises the application built by New.
type Option func(*options)

type options struct {
	views  fiber.Views
	events services.EventPublisher
}

// WithViews replaces the embedded template engine.
func WithViews(v fiber.Views) Option {
	return func(o *options) {
		o.views = v
	}
}

// WithEvents publishes contact changes to events.
func WithEvents(events services.EventPublisher) Option {
	return func(o *options) {
		o.events = events
	}
}

// New builds the fiber application serving the agenda.
func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger, opts ...Option) *fiber.App {
	o := options{views: views.New()}
	for _, opt := range opts {
		opt(&o)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)

	authService := services.NewAuthService(userRepo, cfg.SessionSecret, cfg.SessionTTL)
	contactService := services.NewContactService(
		contactRepo,
		services.NewContactValidator(cfg.InstitutionalDomain),
		o.events,
		logger,
	)

	authHandler := handlers.NewAuthHandler(authService, cfg.SessionCookie, logger)
	contactHandler := handlers.NewContactHandler(contactService, logger)

	app := fiber.New(fiber.Config{
		Views:                 o.views,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(metrics.Middleware())
	app.Use(middleware.LoadSession(authService, cfg.SessionCookie, logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		if err := ping(db); err != nil {
			logger.Warn("database ping failed", zap.Error(err))
			status = "unhealthy"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"events": o.events != nil,
		})
	})
	app.Get(metrics.Path, adaptor.HTTPHandler(metrics.Handler()))

	authHandler.RegisterRoutes(app)
	contactHandler.RegisterRoutes(app, middleware.AuthRequired())

	return app
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Erro interno do servidor."

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).SendString(message)
	}
}
