package middleware

import (
	"errors"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
)

// CookieName is the HTTPOnly cookie carrying the JWT for web clients.
const CookieName = "JWT"

// Auth validates the bearer or cookie JWT on API routes and stores the
// token user in the request locals.
func Auth(ts *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		claims, err := ts.Parse(tokenStr)
		if err != nil || claims.User == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		c.Locals("user", *claims.User)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// UserID returns the authenticated user's ID from the request locals.
func UserID(c *fiber.Ctx) (string, error) {
	user, ok := c.Locals("user").(token.User)
	if !ok || user.ID == "" {
		return "", errors.New("no authenticated user in context")
	}
	return user.ID, nil
}

func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return c.Cookies(CookieName)
}
