package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/features/users/auth/controller"
	"sfformation_backend/internals/middlewares"
	authMiddleware "sfformation_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth. Login and request-first-login are public; the
// rest runs behind the auth middleware, which lets first-login, logout and me
// through while the password is not set yet.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db)

	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", middlewares.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/request-first-login", middlewares.LoginRateLimiter(), authController.RequestFirstLogin)

	requireAuth := authMiddleware.AuthMiddleware(db)
	baseAuth.Post("/first-login", requireAuth, authController.FirstLogin)
	baseAuth.Post("/logout", requireAuth, authController.Logout)
	baseAuth.Get("/me", requireAuth, authController.Me)
}
