package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	authService "sfformation_backend/internals/features/users/auth/service"
	helper "sfformation_backend/internals/helpers"
)

/* ======== Extractors ======== */

// extractToken prefers the session cookie, then a Bearer header.
func extractToken(c *fiber.Ctx) (string, error) {
	if tok := strings.TrimSpace(c.Cookies(configs.CookieName)); tok != "" {
		return strings.Trim(tok, "\"'"), nil
	}
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		return "", fmt.Errorf("no token provided")
	}
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("empty token")
	}
	return tok, nil
}

func ensureUserActive(db *gorm.DB, userID uuid.UUID) error {
	var user struct {
		IsActive bool
	}
	if err := db.Table("users").Select("is_active").Where("id = ?", userID).Take(&user).Error; err != nil {
		return err
	}
	if !user.IsActive {
		return errors.New("user inactive")
	}
	return nil
}

/* ======== Store claims to Locals ======== */

func storeClaimsToLocals(c *fiber.Ctx, claims *authService.Claims, userID uuid.UUID, raw string) {
	c.Locals(helper.LocUserID, userID.String())
	c.Locals(helper.LocUserRole, claims.Role)
	c.Locals(helper.LocUserName, claims.Username)
	c.Locals(helper.LocFirstLoginDone, claims.FirstLoginDone)
	c.Locals(helper.LocRawToken, raw)
	if claims.ExpiresAt != nil {
		c.Locals(helper.LocTokenExp, claims.ExpiresAt.Time)
	}
}
