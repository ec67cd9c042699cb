package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	authRepo "sfformation_backend/internals/features/users/auth/repository"
	authService "sfformation_backend/internals/features/users/auth/service"
	helper "sfformation_backend/internals/helpers"
)

// Routes reachable while the user still has to choose a password.
var firstLoginAllowed = map[string]struct{}{
	"/api/auth/first-login": {},
	"/api/auth/logout":      {},
	"/api/auth/me":          {},
}

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Cookie or Authorization header
		tokenString, err := extractToken(c)
		if err != nil {
			return helper.JsonErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Non authentifié")
		}

		// 2) Blacklist (once per request)
		if c.Locals("token_checked") == nil {
			black, err := authRepo.IsBlacklisted(c.UserContext(), db, tokenString, configs.JWTSecret)
			if err != nil {
				log.Println("[ERROR] DB error lors du contrôle blacklist:", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "Erreur serveur")
			}
			if black {
				log.Println("[WARNING] Token présent dans la blacklist")
				return helper.JsonErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Session expirée")
			}
			c.Locals("token_checked", true)
		}

		// 3) Signature + exp
		claims, err := authService.ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, authService.ErrMissingSecret) {
				log.Println("[ERROR] JWT_SECRET vide")
				return helper.JsonError(c, fiber.StatusInternalServerError, "Configuration JWT manquante")
			}
			return helper.JsonErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Session expirée")
		}
		userID, err := claims.UserID()
		if err != nil {
			return helper.JsonErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Token invalide")
		}

		// 4) Active account
		if err := ensureUserActive(db, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonErrorCode(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Utilisateur introuvable")
			}
			log.Println("[ERROR] ensureUserActive:", err)
			return helper.JsonErrorCode(c, fiber.StatusForbidden, "FORBIDDEN", "Compte désactivé")
		}

		storeClaimsToLocals(c, claims, userID, tokenString)

		// 5) First-login gate
		if !claims.FirstLoginDone {
			if _, ok := firstLoginAllowed[c.Path()]; !ok {
				return helper.JsonErrorCode(c, fiber.StatusForbidden, "FIRST_LOGIN_REQUIRED", "Première connexion requise")
			}
		}
		return c.Next()
	}
}
