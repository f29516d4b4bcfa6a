package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/utils"
)

// JWTFromCookie verifies the session token from the auth cookie, falling back
// to an Authorization: Bearer header.
func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

func tokenFrom(c *fiber.Ctx) string {
	if v := c.Cookies(utils.TokenCookie); v != "" {
		return v
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// OptionalJWT sets the user locals when a valid token is present and never rejects.
func OptionalJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := tokenFrom(c); tokenStr != "" {
			if claims, err := utils.ParseJWT(secret, tokenStr); err == nil {
				c.Locals("user", claims)
				c.Locals("userId", strings.TrimSpace(claims.UserID))
				c.Locals("role", strings.ToLower(strings.TrimSpace(claims.Role)))
			}
		}
		return c.Next()
	}
}
