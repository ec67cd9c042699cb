package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	helper "sfformation_backend/internals/helpers"
)

// RequireRole lets the request through when the token role is one of roles.
func RequireRole(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := helper.GetUserRole(c)
		if role == "" {
			return helper.JsonErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Rôle manquant")
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		log.Printf("[WARN] rôle %q refusé sur %s", role, c.Path())
		if message == "" {
			message = "Accès refusé"
		}
		return helper.JsonErrorCode(c, fiber.StatusForbidden, "FORBIDDEN", message)
	}
}
