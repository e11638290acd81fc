// middleware/gateway.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware validates the shared-secret token set by the API
// gateway in front of this service. Applied globally before any route.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("EVENT_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ EVENT_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("X-Service-Token")
		if authHeader == "" {
			log.Printf("🚫 [GATEWAY_AUTH] Missing X-Service-Token header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		token := strings.TrimSpace(authHeader)
		if token != expectedToken {
			log.Printf("❌ [GATEWAY_AUTH] Invalid service token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
