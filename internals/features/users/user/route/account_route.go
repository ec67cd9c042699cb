package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "sfformation_backend/internals/features/users/user/controller"
)

// AccountAdminRoutes mounts /formateurs and /stagiaires on the admin group.
func AccountAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := userController.NewAccountController(db)

	trainers := admin.Group("/formateurs")
	trainers.Get("/", ctrl.ListTrainers)
	trainers.Post("/", ctrl.CreateTrainer)

	trainees := admin.Group("/stagiaires")
	trainees.Get("/", ctrl.ListTrainees)
	trainees.Post("/", ctrl.CreateTrainee)
}
