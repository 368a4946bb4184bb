package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/easyevent/internal/api/http/handlers"
	"github.com/spec-kit/easyevent/internal/auth"
	"github.com/spec-kit/easyevent/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	Enrollments    *handlers.EnrollmentsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	app.Get("/categories", cfg.Events.ListCategories)

	eventsGroup := app.Group("/events")
	eventsGroup.Get("/upcoming", cfg.Events.ListUpcoming)
	eventsGroup.Get("/past", cfg.Events.ListPast)
	eventsGroup.Get("/", cfg.AuthMiddleware.Handle, cfg.Events.List)
	eventsGroup.Get("/organizer", cfg.AuthMiddleware.Handle,
		auth.RequireRoles(domain.RoleOrganizer), cfg.Events.ListMine)
	eventsGroup.Post("/create", cfg.AuthMiddleware.Handle,
		auth.RequireRoles(domain.RoleOrganizer), cfg.Events.Create)
	eventsGroup.Get("/:id", cfg.AuthMiddleware.HandleOptional, cfg.Events.Get)
	eventsGroup.Put("/:id", cfg.AuthMiddleware.Handle, cfg.Events.Update)
	eventsGroup.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Events.Delete)
	eventsGroup.Put("/:id/submit", cfg.AuthMiddleware.Handle, cfg.Events.Submit)
	eventsGroup.Put("/:id/publish", cfg.AuthMiddleware.Handle, cfg.Events.Publish)
	eventsGroup.Put("/:id/approve", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Events.Approve)
	eventsGroup.Get("/:id/reconcile", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Events.Reconcile)

	enrollGroup := app.Group("/enroll", cfg.AuthMiddleware.Handle)
	enrollGroup.Post("/events/:eventId", cfg.Enrollments.Enroll)
	enrollGroup.Get("/events", cfg.Enrollments.ListMine)
	enrollGroup.Delete("/:id", cfg.Enrollments.Remove)
	enrollGroup.Put("/:id", auth.RequireAdmin(), cfg.Enrollments.UpdateStatus)

	usersGroup := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	usersGroup.Get("/", cfg.Users.List)
	usersGroup.Get("/:id/bans", cfg.Users.BanHistory)
	usersGroup.Post("/:id/ban", cfg.Users.Ban)
	usersGroup.Post("/:id/unban", cfg.Users.Unban)
	usersGroup.Put("/:id/role", cfg.Users.ChangeRole)
}
