package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/chatty-edu-api/internal/config"
	"github.com/noah-isme/chatty-edu-api/internal/handler"
	"github.com/noah-isme/chatty-edu-api/internal/middleware"
	"github.com/noah-isme/chatty-edu-api/internal/observability"
	"github.com/noah-isme/chatty-edu-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	PackHandler       *handler.PackHandler
	ModuleHandler     *handler.ModuleHandler
	ChatHandler       *handler.ChatHandler
	AuthHandler       *handler.AuthHandler
	ConsoleHandler    *handler.ConsoleHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Student surface, used by the local shell without a session.
	student := api.Group("/student")
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterStudent(student)
	}
	if deps.ConsoleHandler != nil {
		deps.ConsoleHandler.RegisterStudent(student)
	}
	if deps.PackHandler != nil {
		deps.PackHandler.RegisterStudent(api)
	}
	if deps.ModuleHandler != nil {
		deps.ModuleHandler.Register(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(api)
	}

	// Login must be registered before the guarded teacher group.
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api.Group("/teacher"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(service.TeacherRole))
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterTeacher(teacher)
	}
	if deps.PackHandler != nil {
		deps.PackHandler.RegisterTeacher(teacher)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterTeacher(teacher)
	}
	if deps.ConsoleHandler != nil {
		deps.ConsoleHandler.RegisterTeacher(teacher)
	}
}
