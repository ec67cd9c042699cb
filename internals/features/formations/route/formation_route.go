package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	formationController "sfformation_backend/internals/features/formations/controller"
)

func FormationAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := formationController.NewFormationController(db)

	f := admin.Group("/formations")
	f.Get("/", ctrl.ListFormations)
	f.Post("/", ctrl.CreateFormation)
	f.Get("/:id/documents", ctrl.ListDocuments)
	f.Patch("/:id/documents/:type", ctrl.UpdateDocument)
	f.Get("/:id/questions", ctrl.ListQuestions)
	f.Post("/:id/questions", ctrl.CreateQuestion)

	q := admin.Group("/questions")
	q.Patch("/:id", ctrl.UpdateQuestion)
	q.Delete("/:id", ctrl.DeleteQuestion)
}
