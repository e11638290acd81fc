package handlers

import (
	"social-events-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	// 🔓 Public routes — no user context, still behind gateway auth
	app.Post("/auth/register", authService.Register)
	app.Post("/auth/code", authService.RequestCode)
	app.Post("/auth/token", authService.Token)
}
