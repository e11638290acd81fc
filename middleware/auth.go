// middleware/auth.go
package middleware

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of the access tokens issued by the auth
// service: subject is the user id, Phone mirrors the login identity.
type AccessClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// UserAuthMiddleware parses the Bearer token and attaches user_id and
// user_phone to the request context. Every secured route sits behind this.
func UserAuthMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header must be a Bearer token",
			})
		}

		claims := &AccessClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Printf("❌ [USER_AUTH] Token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "malformed token subject",
			})
		}

		c.Locals("user_id", uint(userID))
		c.Locals("user_phone", claims.Phone)
		return c.Next()
	}
}

// CurrentUserID reads the authenticated user id set by UserAuthMiddleware.
func CurrentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}
