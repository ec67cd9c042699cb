package routes

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/constants"
	authRoute "sfformation_backend/internals/features/users/auth/route"
	authMiddleware "sfformation_backend/internals/middlewares/auth"
	routeDetails "sfformation_backend/internals/route/details"
)

var startTime time.Time

// SetupRoutes mounts every API group. ctx is cancelled on shutdown and ends
// long-lived streams.
func SetupRoutes(ctx context.Context, app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db)

	// ===================== GROUPS =====================
	requireAuth := authMiddleware.AuthMiddleware(db)

	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/admin",
		requireAuth,
		authMiddleware.RequireRole(constants.RoleErrorAdmin("cet espace"), constants.RoleAdmin),
	)

	log.Println("[INFO] Setting up FORMATEUR group...")
	trainer := app.Group("/api/formateur",
		requireAuth,
		authMiddleware.RequireRole(constants.RoleErrorTrainer("cet espace"), constants.RoleTrainer),
	)

	log.Println("[INFO] Setting up STAGIAIRE group...")
	trainee := app.Group("/api/stagiaire",
		requireAuth,
		authMiddleware.RequireRole(constants.RoleErrorTrainee("cet espace"), constants.RoleTrainee),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Admin routes...")
	routeDetails.AdminRoutes(admin, db)

	log.Println("[INFO] Mounting Formateur routes...")
	routeDetails.TrainerRoutes(trainer, db)

	log.Println("[INFO] Mounting Stagiaire routes...")
	routeDetails.TraineeRoutes(ctx, trainee, db)
}
