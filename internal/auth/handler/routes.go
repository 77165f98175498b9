package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const defaultAllowOrigins = "*"

// Middleware wraps the routes. A nil limiter leaves its routes unlimited and
// an empty AllowOrigins accepts any origin.
type Middleware struct {
	Strict       fiber.Handler
	API          fiber.Handler
	AllowOrigins string
}

func passThrough(c *fiber.Ctx) error { return c.Next() }

func orPassThrough(h fiber.Handler) fiber.Handler {
	if h == nil {
		return passThrough
	}
	return h
}

func RegisterRoutes(app *fiber.App, h *AuthHandler, health *HealthHandler, mw Middleware) {
	origins := mw.AllowOrigins
	if origins == "" {
		origins = defaultAllowOrigins
	}
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	strict := orPassThrough(mw.Strict)
	api := orPassThrough(mw.API)

	app.Get("/api/health", health.Check)

	auth := app.Group("/api/v1/auth")
	auth.Post("/signup", strict, h.Signup)
	auth.Post("/login", strict, h.Login)
	auth.Post("/logout", api, h.Logout)
	auth.Post("/refresh", api, h.Refresh)

	app.Get("/api/v1/me", api, h.RequireAccessToken, h.Me)
}
