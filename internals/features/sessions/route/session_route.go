package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	sessionController "sfformation_backend/internals/features/sessions/controller"
)

func SessionAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := sessionController.NewSessionAdminController(db)

	s := admin.Group("/sessions")
	s.Get("/", ctrl.ListSessions)
	s.Post("/", ctrl.CreateSession)
	s.Get("/:id", ctrl.GetSession)
	s.Patch("/:id/creneaux/:creneau_id", ctrl.UpdateSlot)
	s.Get("/:id/inscriptions", ctrl.ListEnrollments)
	s.Post("/:id/inscriptions", ctrl.Enroll)

	i := admin.Group("/inscriptions")
	i.Patch("/:id", ctrl.UpdateNeedsAnalysis)
	i.Get("/:id/dossier", ctrl.GetDossier)
}
