package helper

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys filled by the auth middleware.
const (
	LocUserID         = "user_id"
	LocUserRole       = "userRole"
	LocUserName       = "user_name"
	LocFirstLoginDone = "first_login_done"
	LocRawToken       = "raw_token"
	LocTokenExp       = "token_exp"
)

// GetUserIDFromToken reads c.Locals("user_id").
// 401 when not logged in, 400 when the value is malformed.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	switch t := c.Locals(LocUserID).(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non connecté")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non connecté")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Identifiant utilisateur invalide")
		}
		return id, nil
	case nil:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non connecté")
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Identifiant utilisateur invalide")
	}
}

func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocUserRole).(string)
	return role
}

func GetRawAccessToken(c *fiber.Ctx) string {
	v, _ := c.Locals(LocRawToken).(string)
	return strings.TrimSpace(v)
}

func GetTokenExpiry(c *fiber.Ctx) time.Time {
	t, _ := c.Locals(LocTokenExp).(time.Time)
	return t
}

// ParseUUIDParam parses a route param, 400 on a bad value.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, NewValidationError("Paramètre " + name + " invalide")
	}
	return id, nil
}
